package utils

//JointsPerPerson is the number of keypoints the pose model predicts for every person
const JointsPerPerson = 19

//Stride is the downsampling factor between the network input and its output feature maps
const Stride = 8

//AvgPersonHeight is the height (cm) the model's normalized location maps are scaled by
const AvgPersonHeight = 180.0

//DefaultBaseHeight is the default network input height
const DefaultBaseHeight = 256

//DefaultOutputLimit is the default number of frames stored in the output video. 0 means all of them
const DefaultOutputLimit = 1000

//FocalLengthFactor is multiplied by the frame width when the camera focal length is unknown
const FocalLengthFactor = 0.8

//DefaultCaptureFPS is used when a capture device does not report a usable frame rate
const DefaultCaptureFPS = 30.0

//ImageSequenceFPS is the frame rate reported by image file/folder sources
const ImageSequenceFPS = 1.0

//Keyboard codes returned by the display's key poll
const (
	KeyNone  = -1
	KeyEsc   = 27
	KeySpace = 32
	KeyP     = 112
	KeyA     = 97
	KeyD     = 100
	KeyS     = 115
	KeyW     = 119
)

//ImageExtensions are file extensions treated as still images when opening an input
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"}
