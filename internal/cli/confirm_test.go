package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/sync"
)

func TestLinePrompterConfirm(t *testing.T) {
	tests := map[string]struct {
		input string
		want  bool
	}{
		"y":           {"y\n", true},
		"yes":         {"yes\n", true},
		"upper Y":     {"Y\n", true},
		"padded":      {"  yes  \n", true},
		"n":           {"n\n", false},
		"empty line":  {"\n", false},
		"eof":         {"", false},
		"other words": {"sure\n", false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm("Apply changes?", false)
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "Apply changes? [y/N]") {
				t.Errorf("prompt not written, got %q", out.String())
			}
		})
	}
}

func TestLinePrompterSelectDeletions(t *testing.T) {
	items := []sync.Item{
		{Name: "a", Type: model.TypeCommand, ID: "id-a"},
		{Name: "b", Type: model.TypeSkill, ID: "id-b"},
	}

	var out bytes.Buffer
	ids, err := NewLinePrompter(strings.NewReader("y\n"), &out).SelectDeletions(items)
	if err != nil {
		t.Fatalf("SelectDeletions() error = %v", err)
	}
	if strings.Join(ids, ",") != "id-a,id-b" {
		t.Errorf("ids = %v", ids)
	}
	if !strings.Contains(out.String(), "Delete 2 artifact(s)") {
		t.Errorf("prompt = %q", out.String())
	}

	ids, err = NewLinePrompter(strings.NewReader("n\n"), &out).SelectDeletions(items)
	if err != nil || len(ids) != 0 {
		t.Errorf("declined SelectDeletions() = %v, %v", ids, err)
	}

	ids, err = NewLinePrompter(strings.NewReader(""), &out).SelectDeletions(nil)
	if err != nil || ids != nil {
		t.Errorf("empty SelectDeletions() = %v, %v", ids, err)
	}
}
