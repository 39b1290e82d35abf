// Package models defines the data structures for the crop session.
// JSON field names match what the storefront UI and the order service expect.
package models

// RequiredCount is the number of photo slots in one box. Hard product
// constraint: submission is refused until exactly this many slots exist.
const RequiredCount = 10

// CropRect is a crop rectangle in source-image pixel coordinates.
// It is resolution independent: the same rect re-renders at any output size.
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether the rectangle is non-degenerate.
func (r CropRect) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// ImageSlot is one photograph destined for one physical position in the box.
// SourceBytes is owned exclusively by the slot and never shared.
type ImageSlot struct {
	ID            string
	FileName      string
	SourceBytes   []byte
	DisplayHandle string // transient renderable reference, never persisted
	Width         int    // natural dimensions, 0 until measured
	Height        int
	Crop          *CropRect // nil means "not yet committed"
}

// DeepCopy returns a copy of the slot that shares no mutable memory
// with the original.
func (s ImageSlot) DeepCopy() ImageSlot {
	cp := s
	cp.SourceBytes = make([]byte, len(s.SourceBytes))
	copy(cp.SourceBytes, s.SourceBytes)
	if s.Crop != nil {
		c := *s.Crop
		cp.Crop = &c
	}
	return cp
}

// FileUpload is a candidate file handed to AddFiles. ContentType may be
// empty: some mobile upload paths omit it, in which case the filename
// extension decides whether the file is image-like.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// SlotView is the observable projection of an ImageSlot: everything the
// rendering layer needs, minus the image bytes.
type SlotView struct {
	ID            string    `json:"id"`
	FileName      string    `json:"file_name"`
	DisplayHandle string    `json:"display_handle"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Crop          *CropRect `json:"crop,omitempty"`
}

// SessionView is the deep-copied snapshot of session state published to
// observers on every mutation. Observers never see a half-applied mutation.
type SessionView struct {
	Slots         []SlotView `json:"slots"`
	SelectedIndex int        `json:"selected_index"`
	LiveCrop      *CropRect  `json:"live_crop,omitempty"`
	CanSubmit     bool       `json:"can_submit"`
	Phase         string     `json:"phase"`
	LastError     string     `json:"last_error,omitempty"`
}

// Order is the summary record the editor header displays.
// Fields mirror the order service's wire format.
type Order struct {
	ID         int    `json:"id"`
	ClientName string `json:"client_name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Variant    string `json:"variant,omitempty"`
	Status     string `json:"status,omitempty"`
}

// SendResult is the order finalization response.
type SendResult struct {
	Status  string  `json:"status"`
	Deposit float64 `json:"deposit"`
}

// SnapshotEntry is the durable encoding of one slot inside a persisted
// session snapshot. Image is a base64 inlining of the source bytes: the
// persistence medium is a string KV store, so content cannot be a reference.
type SnapshotEntry struct {
	ID       string    `json:"id"`
	FileName string    `json:"file_name"`
	Image    string    `json:"image"`
	Crop     *CropRect `json:"crop,omitempty"`
}
