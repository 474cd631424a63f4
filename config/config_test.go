package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	parseCfg, detectorCfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if parseCfg.FlattenPDF {
		t.Errorf("expected flatten_pdf default false, got true")
	}
	if parseCfg.PageRange() != nil {
		t.Errorf("expected nil page range when page_end unset, got %+v", parseCfg.PageRange())
	}
	if detectorCfg.IntraThreads != 16 {
		t.Errorf("expected default intra threads 16, got %d", detectorCfg.IntraThreads)
	}
}

func TestParseConfigPageRange(t *testing.T) {
	c := ParseConfig{PageStart: 2, PageEnd: 5}
	r := c.PageRange()
	if r == nil || r.Start != 2 || r.End != 5 {
		t.Fatalf("expected page range [2,5), got %+v", r)
	}
}

func TestDetectorConfigToLayoutConfigResolvesProviders(t *testing.T) {
	dc := DetectorConfig{ExecutionProviders: []string{"CUDA"}, IntraThreads: 8}
	lc := dc.ToLayoutConfig()
	if lc.IntraThreads != 8 {
		t.Errorf("expected intra threads overridden to 8, got %d", lc.IntraThreads)
	}
	if len(lc.ExecutionProviders) != 1 {
		t.Fatalf("expected one execution provider, got %+v", lc.ExecutionProviders)
	}
}
