//Package geometry moves camera space poses into the stabilized world frame used for display.
package geometry

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"
)

//ErrSingular is returned when the extrinsic rotation can not be inverted
var ErrSingular = errors.New("extrinsic rotation is not invertible")

//Extrinsics is the camera pose relative to the ground frame: camera = R*world + t
type Extrinsics struct {
	r    *mat.Dense
	rInv *mat.Dense
	t    r3.Vector
}

//NewExtrinsics validates and inverts R once, so per frame transforms never see a singular matrix
func NewExtrinsics(r [3][3]float64, t [3]float64) (*Extrinsics, error) {
	rm := mat.NewDense(3, 3, []float64{
		r[0][0], r[0][1], r[0][2],
		r[1][0], r[1][1], r[1][2],
		r[2][0], r[2][1], r[2][2],
	})

	var inv mat.Dense
	if err := inv.Inverse(rm); err != nil {
		return nil, fmt.Errorf("NewExtrinsics: %w, got '%v'", ErrSingular, err)
	}

	return &Extrinsics{r: rm, rInv: &inv, t: r3.Vector{X: t[0], Y: t[1], Z: t[2]}}, nil
}

//LoadExtrinsics reads a JSON record holding 'R' (3x3) and 't' (3 values, flat or as a 3x1 column)
func LoadExtrinsics(path string) (*Extrinsics, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("LoadExtrinsics: Could not read '%s', got '%w'", path, err)
	}

	//viper lower cases keys
	rValues, err := flatten(v.Get("r"))
	if err != nil || len(rValues) != 9 {
		return nil, fmt.Errorf("LoadExtrinsics: 'R' in '%s' must be a 3x3 matrix, got %v", path, v.Get("r"))
	}
	tValues, err := flatten(v.Get("t"))
	if err != nil || len(tValues) != 3 {
		return nil, fmt.Errorf("LoadExtrinsics: 't' in '%s' must hold 3 values, got %v", path, v.Get("t"))
	}

	var r [3][3]float64
	for i, val := range rValues {
		r[i/3][i%3] = val
	}

	return NewExtrinsics(r, [3]float64{tValues[0], tValues[1], tValues[2]})
}

//flatten walks nested JSON arrays in row major order
func flatten(value interface{}) ([]float64, error) {
	switch val := value.(type) {
	case float64:
		return []float64{val}, nil
	case int:
		return []float64{float64(val)}, nil
	case []interface{}:
		res := make([]float64, 0, len(val))
		for _, item := range val {
			inner, err := flatten(item)
			if err != nil {
				return nil, err
			}
			res = append(res, inner...)
		}
		return res, nil
	default:
		return nil, fmt.Errorf("flatten: Unexpected value %v (%T)", value, value)
	}
}

//Translation returns t
func (e *Extrinsics) Translation() r3.Vector {
	return e.t
}
