//Package skeleton holds the joint connectivity of the reference 19 keypoints model and
//expands it for several people sharing one flat joint buffer.
package skeleton

import "github.com/chenBenjamin97/pose3d-live/pkg/utils"

//Edge is a pair of joint indices connected by a limb
type Edge [2]int

//JointNames is the order of the keypoints predicted by the model
var JointNames = [utils.JointsPerPerson]string{
	"neck", "nose", "pelvis",
	"l_shoulder", "l_elbow", "l_wrist", "l_hip", "l_knee", "l_ankle",
	"r_shoulder", "r_elbow", "r_wrist", "r_hip", "r_knee", "r_ankle",
	"r_eye", "l_eye", "r_ear", "l_ear",
}

//NeckJoint is the root keypoint every other joint is predicted relative to
const NeckJoint = 0

//Template is the limbs drawn for a single person
var Template = []Edge{
	{11, 10}, {10, 9}, {9, 0}, {0, 3}, {3, 4}, {4, 5}, {0, 6}, {6, 7}, {7, 8},
	{0, 12}, {12, 13}, {13, 14}, {0, 1}, {1, 15}, {15, 16}, {1, 17}, {17, 18},
}

//Expand repeats template once per person. Copy k has every index shifted by k*jointsPerPerson,
//so the result indexes a buffer holding persons*jointsPerPerson joints, person 0 first.
func Expand(template []Edge, jointsPerPerson, persons int) []Edge {
	if persons <= 0 {
		return []Edge{}
	}

	edges := make([]Edge, 0, len(template)*persons)
	for k := 0; k < persons; k++ {
		offset := k * jointsPerPerson
		for _, e := range template {
			edges = append(edges, Edge{e[0] + offset, e[1] + offset})
		}
	}

	return edges
}
