package api

import (
	"fmt"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/sync"
)

// Companion is a skill companion file on the wire.
// Binary payloads carry base64 content and Encoding "base64".
type Companion struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	MimeType string `json:"mimeType,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// Record is an artifact on the wire.
type Record struct {
	Name           string             `json:"name"`
	Type           model.ArtifactType `json:"type"`
	Content        string             `json:"content"`
	CompanionFiles []Companion        `json:"companionFiles,omitempty"`
}

// SyncRequest asks the backend to reconcile a batch.
type SyncRequest struct {
	Configs     []Record `json:"configs"`
	Types       []string `json:"types,omitempty"`
	DryRun      bool     `json:"dry_run,omitempty"`
	DeepCompare bool     `json:"deep_compare,omitempty"`
}

// Summary counts each bucket of a sync response.
type Summary struct {
	Created            int `json:"created"`
	Updated            int `json:"updated"`
	Unchanged          int `json:"unchanged"`
	DeletionCandidates int `json:"deletionCandidates"`
	Failed             int `json:"failed"`
}

// NameType identifies an artifact without its id.
type NameType struct {
	Name string             `json:"name"`
	Type model.ArtifactType `json:"type"`
}

// Details lists the artifacts in each bucket.
type Details struct {
	Created            []sync.Item       `json:"created"`
	Updated            []sync.Item       `json:"updated"`
	Unchanged          []NameType        `json:"unchanged"`
	DeletionCandidates []sync.Item       `json:"deletionCandidates"`
	Failed             []sync.FailedItem `json:"failed,omitempty"`
}

// SyncResponse is the outcome of a sync request.
type SyncResponse struct {
	Success bool    `json:"success"`
	DryRun  bool    `json:"dry_run,omitempty"`
	Summary Summary `json:"summary"`
	Details Details `json:"details"`
}

// DeleteRequest asks the backend to delete artifacts by id.
type DeleteRequest struct {
	ConfigIDs []string `json:"config_ids"`
}

// DeleteResponse reports which ids were deleted.
type DeleteResponse = sync.DeleteResult

// ListResponse holds the owner's remote artifacts.
type ListResponse struct {
	Configs []model.RemoteRecord `json:"configs"`
}

// ErrorResponse is the body of every non-2xx server response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToWire converts a scanned record to its wire form.
func ToWire(rec model.Record) Record {
	out := Record{Name: rec.Name, Type: rec.Type, Content: rec.Content}
	for _, f := range rec.CompanionFiles {
		content, encoding := model.EncodePayload(f.Payload)
		out.CompanionFiles = append(out.CompanionFiles, Companion{
			Path:     f.Path,
			Content:  content,
			MimeType: f.MimeType,
			Encoding: encoding,
		})
	}
	return out
}

// ToWireBatch converts a batch of records.
func ToWireBatch(records []model.Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, ToWire(rec))
	}
	return out
}

// FromWire converts a wire record back into a model record.
func FromWire(rec Record) (model.Record, error) {
	out := model.Record{Name: rec.Name, Type: rec.Type, Content: rec.Content}
	for _, c := range rec.CompanionFiles {
		payload, err := model.DecodePayload(c.Content, c.Encoding)
		if err != nil {
			return model.Record{}, fmt.Errorf("%s: companion %s: %w", rec.Name, c.Path, err)
		}
		out.CompanionFiles = append(out.CompanionFiles, model.CompanionFile{
			Path:     c.Path,
			Payload:  payload,
			MimeType: c.MimeType,
		})
	}
	return out, nil
}

// FromWireBatch converts a wire batch, stopping at the first malformed record.
func FromWireBatch(records []Record) ([]model.Record, error) {
	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		r, err := FromWire(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// NewSyncResponse builds the wire response for an engine result.
func NewSyncResponse(r *sync.Result) SyncResponse {
	unchanged := make([]NameType, 0, len(r.Unchanged))
	for _, item := range r.Unchanged {
		unchanged = append(unchanged, NameType{Name: item.Name, Type: item.Type})
	}

	return SyncResponse{
		Success: r.Success(),
		DryRun:  r.DryRun,
		Summary: Summary{
			Created:            len(r.Created),
			Updated:            len(r.Updated),
			Unchanged:          len(r.Unchanged),
			DeletionCandidates: len(r.DeletionCandidates),
			Failed:             len(r.Failed),
		},
		Details: Details{
			Created:            nonNil(r.Created),
			Updated:            nonNil(r.Updated),
			Unchanged:          unchanged,
			DeletionCandidates: nonNil(r.DeletionCandidates),
			Failed:             r.Failed,
		},
	}
}

// Result converts a wire response back into an engine result.
// Unchanged items carry no id on the wire.
func (r SyncResponse) Result() *sync.Result {
	unchanged := make([]sync.Item, 0, len(r.Details.Unchanged))
	for _, nt := range r.Details.Unchanged {
		unchanged = append(unchanged, sync.Item{Name: nt.Name, Type: nt.Type})
	}

	return &sync.Result{
		Created:            nonNil(r.Details.Created),
		Updated:            nonNil(r.Details.Updated),
		Unchanged:          unchanged,
		DeletionCandidates: nonNil(r.Details.DeletionCandidates),
		Failed:             r.Details.Failed,
		DryRun:             r.DryRun,
	}
}

func nonNil(items []sync.Item) []sync.Item {
	if items == nil {
		return []sync.Item{}
	}
	return items
}
