package inference

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

//DNNEngine runs the network through OpenCV's dnn module
type DNNEngine struct {
	net    gocv.Net
	stride int
}

//NewDNNEngine loads the model at modelPath. OpenVINO IR models ('.xml') expect their weights next to them
//with a '.bin' extension. device is one of CPU, GPU, MYRIAD, HDDL or CUDA.
func NewDNNEngine(modelPath, device string, stride int) (*DNNEngine, error) {
	if stride <= 0 {
		return nil, fmt.Errorf("NewDNNEngine: Invalid stride %d", stride)
	}

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("NewDNNEngine: Could not open model, got '%w'", err)
	}

	var net gocv.Net
	ext := strings.ToLower(filepath.Ext(modelPath))
	if ext == ".xml" {
		weights := strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".bin"
		net = gocv.ReadNet(weights, modelPath)
	} else {
		net = gocv.ReadNet(modelPath, "")
	}
	if net.Empty() {
		return nil, fmt.Errorf("NewDNNEngine: Could not load model '%s'", modelPath)
	}

	backend, target, err := deviceBackendTarget(device, ext == ".xml")
	if err != nil {
		net.Close()
		return nil, err
	}
	if err := net.SetPreferableBackend(backend); err != nil {
		net.Close()
		return nil, fmt.Errorf("NewDNNEngine: Could not set backend, got '%w'", err)
	}
	if err := net.SetPreferableTarget(target); err != nil {
		net.Close()
		return nil, fmt.Errorf("NewDNNEngine: Could not set target, got '%w'", err)
	}

	log.Printf("NewDNNEngine: Loaded '%s' on %s", modelPath, strings.ToUpper(device))

	return &DNNEngine{net: net, stride: stride}, nil
}

func deviceBackendTarget(device string, openvino bool) (gocv.NetBackendType, gocv.NetTargetType, error) {
	backend := gocv.NetBackendDefault
	if openvino {
		backend = gocv.NetBackendOpenVINO
	}

	switch strings.ToUpper(device) {
	case "", "CPU":
		return backend, gocv.NetTargetCPU, nil
	case "GPU":
		return backend, gocv.NetTargetFP32, nil
	case "MYRIAD", "HDDL":
		return gocv.NetBackendOpenVINO, gocv.NetTargetVPU, nil
	case "CUDA":
		return gocv.NetBackendCUDA, gocv.NetTargetCUDA, nil
	default:
		return backend, gocv.NetTargetCPU, fmt.Errorf("NewDNNEngine: Unknown device '%s'", device)
	}
}

//Infer crops img to a multiple of the stride and runs one forward pass
func (e *DNNEngine) Infer(img gocv.Mat) (*Result, error) {
	if img.Empty() {
		return nil, errors.New("Infer: Empty image")
	}

	w := img.Cols() - img.Cols()%e.stride
	h := img.Rows() - img.Rows()%e.stride
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("Infer: Image %dx%d smaller than stride %d", img.Cols(), img.Rows(), e.stride)
	}

	roi := img.Region(image.Rect(0, 0, w, h))
	defer roi.Close()

	blob := gocv.BlobFromImage(roi, 1, image.Pt(w, h), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	outputs := e.net.ForwardLayers([]string{FeaturesLayer, HeatmapsLayer})
	defer func() {
		for i := range outputs {
			outputs[i].Close()
		}
	}()
	if len(outputs) != 2 {
		return nil, fmt.Errorf("Infer: Expected 2 outputs, got %d", len(outputs))
	}

	res := &Result{}
	var err error
	if res.Features, err = tensorFromBlob(outputs[0]); err != nil {
		return nil, err
	}
	if res.Heatmaps, err = tensorFromBlob(outputs[1]); err != nil {
		return nil, err
	}

	return res, nil
}

//Close releases the network
func (e *DNNEngine) Close() error {
	return e.net.Close()
}
