package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForScore(t *testing.T) {
	tests := []struct {
		score int
		want  Variant
	}{
		{0, Success},
		{60, Success},
		{61, Warning},
		{80, Warning},
		{81, Danger},
		{100, Danger},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ForScore(tt.score), "score %d", tt.score)
	}
}

func TestForToast(t *testing.T) {
	assert.Equal(t, Success, ForToast("success"))
	assert.Equal(t, Danger, ForToast("error"))
	assert.Equal(t, Warning, ForToast("warning"))
	assert.Equal(t, Secondary, ForToast("info"))
}

func TestForMSS(t *testing.T) {
	assert.Equal(t, Warning, ForMSS(1199))
	assert.Equal(t, Success, ForMSS(1380))
	assert.Equal(t, Success, ForMSS(1460))
	assert.Equal(t, Secondary, ForMSS(1400))
}

func TestStatusEscapesAndLabels(t *testing.T) {
	assert.Equal(t, `<span class="badge badge-warning">In Progress</span>`, string(Status("in_progress")))
	assert.Equal(t, `<span class="badge badge-secondary">&lt;b&gt;</span>`, string(HTML(Secondary, "<b>")))
}
