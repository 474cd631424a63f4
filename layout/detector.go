package layout

import (
	"context"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/rapidpapertrans/docparse/internal/logger"
	"github.com/rapidpapertrans/docparse/internal/pdferr"
)

// Detector is the narrow interface the layout queue depends on: run inference on a
// preprocessed tensor and get back the model's raw flattened output.
type Detector interface {
	Infer(ctx context.Context, tensor []float32) ([]float32, error)
}

// ExecutionProvider selects an ONNX Runtime backend, mirroring ferrules' OrtExecutionProvider.
type ExecutionProvider int

const (
	ProviderCPU ExecutionProvider = iota
	ProviderCoreML
	ProviderCUDA
)

// Config configures the ONNX Runtime session backing ORTDetector.
type Config struct {
	ModelPath          string
	SharedLibraryPath  string
	ExecutionProviders []ExecutionProvider
	IntraThreads       int
	InterThreads       int
}

// DefaultConfig mirrors ferrules' ORTConfig::default: CPU execution, 16 intra-op threads,
// 4 inter-op threads.
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:          modelPath,
		ExecutionProviders: []ExecutionProvider{ProviderCPU},
		IntraThreads:       16,
		InterThreads:       4,
	}
}

// ORTDetector runs the DocLayNet ONNX model via onnxruntime_go. Input/output tensors are
// allocated once at construction and reused across calls, matching onnxruntime_go's
// bound-tensor session model; Infer is therefore serialized behind mu.
type ORTDetector struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	mu      sync.Mutex
}

// NewORTDetector loads and commits an ONNX Runtime session for cfg.ModelPath.
func NewORTDetector(cfg Config) (*ORTDetector, error) {
	if cfg.ModelPath == "" {
		return nil, pdferr.New(pdferr.KindLayoutInference, "model path not specified", nil)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, pdferr.New(pdferr.KindLayoutInference, "layout model file not found", err)
	}

	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, pdferr.New(pdferr.KindLayoutInference, "initialize onnxruntime environment", err)
		}
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, pdferr.New(pdferr.KindLayoutInference, "create session options", err)
	}
	defer opts.Destroy()
	if cfg.IntraThreads > 0 {
		_ = opts.SetIntraOpNumThreads(cfg.IntraThreads)
	}
	if cfg.InterThreads > 0 {
		_ = opts.SetInterOpNumThreads(cfg.InterThreads)
	}
	for _, p := range cfg.ExecutionProviders {
		switch p {
		case ProviderCoreML:
			_ = opts.AppendExecutionProviderCoreML(0)
		case ProviderCUDA:
			_ = opts.AppendExecutionProviderCUDA(nil)
		case ProviderCPU:
			// default backend, nothing to append
		}
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, RequiredHeight, RequiredWidth), make([]float32, 3*RequiredHeight*RequiredWidth))
	if err != nil {
		return nil, pdferr.New(pdferr.KindLayoutInference, "allocate input tensor", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 4+outputClasses, outputAnchors))
	if err != nil {
		inputTensor.Destroy()
		return nil, pdferr.New(pdferr.KindLayoutInference, "allocate output tensor", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{"images"}, []string{"output0"},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, opts)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, pdferr.New(pdferr.KindLayoutInference, "commit onnx session", err)
	}

	return &ORTDetector{session: session, input: inputTensor, output: outputTensor}, nil
}

// Infer runs the model on a single preprocessed [1,3,1024,1024] tensor and returns a copy
// of the flattened [1, 4+classes, anchors] output.
func (d *ORTDetector) Infer(ctx context.Context, tensor []float32) ([]float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, pdferr.New(pdferr.KindCancelled, "inference cancelled before dispatch", err)
	}

	copy(d.input.GetData(), tensor)

	logger.Debug("layout inference starting", logger.Int("tensor_len", len(tensor)))
	if err := d.session.Run(); err != nil {
		return nil, pdferr.New(pdferr.KindLayoutInference, "onnx inference failed", err)
	}

	raw := d.output.GetData()
	out := make([]float32, len(raw))
	copy(out, raw)
	return out, nil
}

// Close releases the underlying ONNX Runtime session and its bound tensors.
func (d *ORTDetector) Close() error {
	if d.session == nil {
		return nil
	}
	err := d.session.Destroy()
	d.input.Destroy()
	d.output.Destroy()
	return err
}
