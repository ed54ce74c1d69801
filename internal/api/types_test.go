package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/sync"
)

func TestToWire_SkillCompanions(t *testing.T) {
	rec := model.Record{
		Name:    "pdf",
		Type:    model.TypeSkill,
		Content: "# PDF",
		CompanionFiles: []model.CompanionFile{
			{Path: "ref.md", Payload: model.Text("hello"), MimeType: "text/markdown"},
			{Path: "logo.png", Payload: model.Binary{0xff, 0x00}, MimeType: "image/png"},
		},
	}

	wire := ToWire(rec)
	if len(wire.CompanionFiles) != 2 {
		t.Fatalf("CompanionFiles = %d, want 2", len(wire.CompanionFiles))
	}
	if wire.CompanionFiles[0].Encoding != "" || wire.CompanionFiles[0].Content != "hello" {
		t.Errorf("text companion = %+v", wire.CompanionFiles[0])
	}
	if wire.CompanionFiles[1].Encoding != model.EncodingBase64 || wire.CompanionFiles[1].Content != "/wA=" {
		t.Errorf("binary companion = %+v", wire.CompanionFiles[1])
	}

	back, err := FromWire(wire)
	if err != nil {
		t.Fatalf("FromWire() error = %v", err)
	}
	bin, ok := back.CompanionFiles[1].Payload.(model.Binary)
	if !ok || len(bin) != 2 || bin[0] != 0xff {
		t.Errorf("binary payload = %#v", back.CompanionFiles[1].Payload)
	}
	if back.CompanionFiles[0].MimeType != "text/markdown" {
		t.Errorf("MimeType = %q", back.CompanionFiles[0].MimeType)
	}
}

func TestToWire_OmitsEmptyCompanions(t *testing.T) {
	data, err := json.Marshal(ToWire(model.Record{Name: "deploy", Type: model.TypeCommand, Content: "Do X"}))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "companionFiles") {
		t.Errorf("wire record should omit companionFiles: %s", data)
	}
}

func TestFromWireBatch_BadEncoding(t *testing.T) {
	tests := map[string]Companion{
		"bad base64":       {Path: "a", Content: "!!!", Encoding: model.EncodingBase64},
		"unknown encoding": {Path: "a", Content: "x", Encoding: "rot13"},
	}

	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromWireBatch([]Record{{Name: "s", Type: model.TypeSkill, CompanionFiles: []Companion{c}}})
			if err == nil {
				t.Error("FromWireBatch() expected error")
			}
		})
	}
}

func TestNewSyncResponse_JSONShape(t *testing.T) {
	result := &sync.Result{
		Created:            []sync.Item{{Name: "a", Type: model.TypeCommand, ID: "id-1"}},
		Unchanged:          []sync.Item{{Name: "b", Type: model.TypeAgent, ID: "id-2"}},
		DeletionCandidates: []sync.Item{{Name: "c", Type: model.TypeSkill, ID: "id-3"}},
	}

	data, err := json.Marshal(NewSyncResponse(result))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["success"] != true {
		t.Errorf("success = %v", decoded["success"])
	}
	summary := decoded["summary"].(map[string]any)
	if summary["deletionCandidates"] != float64(1) || summary["updated"] != float64(0) {
		t.Errorf("summary = %v", summary)
	}
	details := decoded["details"].(map[string]any)
	if _, ok := details["failed"]; ok {
		t.Error("details.failed should be omitted when empty")
	}
	updated, ok := details["updated"].([]any)
	if !ok || len(updated) != 0 {
		t.Errorf("details.updated = %v, want empty list", details["updated"])
	}
	unchanged := details["unchanged"].([]any)[0].(map[string]any)
	if _, ok := unchanged["id"]; ok {
		t.Error("unchanged items should not carry an id")
	}

	back := NewSyncResponse(result).Result()
	if len(back.Created) != 1 || back.Created[0].ID != "id-1" {
		t.Errorf("Result().Created = %+v", back.Created)
	}
	if len(back.DeletionCandidates) != 1 || back.DeletionCandidates[0].ID != "id-3" {
		t.Errorf("Result().DeletionCandidates = %+v", back.DeletionCandidates)
	}
}
