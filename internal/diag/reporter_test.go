package diag

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFormatShowsContext(t *testing.T) {
	color.NoColor = true
	source := "OpCapability Shader\nOpBogus\nOpMemoryModel Logical GLSL450"
	r := NewReporter("shader.spvil", source)

	out := r.Format(2, "invalid operation OpBogus")
	assert.Contains(t, out, "error: invalid operation OpBogus")
	assert.Contains(t, out, "shader.spvil:2")
	assert.Contains(t, out, "OpBogus")
	assert.Contains(t, out, "^")
	assert.Contains(t, out, "OpCapability Shader")
	assert.Contains(t, out, "OpMemoryModel Logical GLSL450")
}

func TestFormatOutOfRangeLine(t *testing.T) {
	color.NoColor = true
	r := NewReporter("shader.spvil", "OpCapability Shader")
	out := r.Format(99, "message")
	assert.Contains(t, out, "error: message")
	assert.Contains(t, out, "shader.spvil:99")
}
