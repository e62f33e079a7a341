package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Dolo 650", "dolo 650"},
		{"dolo  650", "dolo 650"},
		{"  DOLO 650  ", "dolo 650"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewBatchKey_CollapsesVariants(t *testing.T) {
	a := NewBatchKey("Dolo 650 ", "b-12")
	b := NewBatchKey("dolo  650", "B-12")

	assert.Equal(t, a, b)
	assert.Equal(t, "dolo 650|b-12", a.String())
}

func TestNewItem(t *testing.T) {
	item := NewItem("ph-1", " Dolo 650 ", "B-12")

	assert.Equal(t, "Dolo 650", item.Name, "display name keeps its casing")
	assert.Equal(t, "dolo 650", item.NameKey)
	assert.Equal(t, "B-12", item.BatchNo)
	assert.Equal(t, "dolo 650|b-12", item.Key)
	assert.Equal(t, item.Key, item.BatchKey().String())
}
