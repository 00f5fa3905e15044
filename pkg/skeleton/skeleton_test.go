package skeleton

import (
	"testing"

	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	t.Run("two persons of three joints", func(t *testing.T) {
		got := Expand([]Edge{{0, 1}, {1, 2}}, 3, 2)
		assert.Equal(t, []Edge{{0, 1}, {1, 2}, {3, 4}, {4, 5}}, got)
	})

	t.Run("single person keeps template", func(t *testing.T) {
		assert.Equal(t, Template, Expand(Template, utils.JointsPerPerson, 1))
	})

	t.Run("no persons", func(t *testing.T) {
		got := Expand(Template, utils.JointsPerPerson, 0)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestExpandStaysInBounds(t *testing.T) {
	for persons := 1; persons <= 5; persons++ {
		edges := Expand(Template, utils.JointsPerPerson, persons)
		assert.Len(t, edges, len(Template)*persons)
		for _, e := range edges {
			for _, idx := range e {
				assert.GreaterOrEqual(t, idx, 0)
				assert.Less(t, idx, persons*utils.JointsPerPerson)
			}
		}
	}
}

func TestTemplateReferencesKnownJoints(t *testing.T) {
	for _, e := range Template {
		assert.Less(t, e[0], len(JointNames))
		assert.Less(t, e[1], len(JointNames))
		assert.NotEqual(t, e[0], e[1])
	}
}

func TestJointNamesFaceOrder(t *testing.T) {
	assert.Equal(t, "neck", JointNames[NeckJoint])
	assert.Equal(t, []string{"r_eye", "l_eye", "r_ear", "l_ear"}, JointNames[15:19])
	assert.Equal(t, "pelvis", JointNames[2])
}
