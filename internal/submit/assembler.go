// Package submit assembles the final multipart payload and drives the
// submission state machine: Idle -> Submitting -> Confirmed, or back to
// Idle with the error retained for display.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"

	"github.com/copiiworld/cajita-go/internal/crop"
	"github.com/copiiworld/cajita-go/internal/models"
	"github.com/copiiworld/cajita-go/internal/session"
	"github.com/copiiworld/cajita-go/internal/snapshot"
)

// OrderService is the slice of the order-service client the assembler needs.
type OrderService interface {
	SubmitImages(ctx context.Context, orderID, contentType string, body io.Reader) error
	SendOrder(ctx context.Context, orderID string) (*models.SendResult, error)
}

// Payload is an assembled multipart body ready to post.
type Payload struct {
	ContentType string
	Body        []byte
	Parts       int // image/crop pairs
}

// Assembler renders committed crops and submits the finished box.
type Assembler struct {
	mu         sync.Mutex
	submitting bool

	sess  *session.Session
	svc   OrderService
	codec *snapshot.Codec
}

// New creates an assembler over the given session, order service and
// snapshot codec.
func New(sess *session.Session, svc OrderService, codec *snapshot.Codec) *Assembler {
	return &Assembler{sess: sess, svc: svc, codec: codec}
}

// lastResortCrop should never be used: the submission precondition
// guarantees an effective crop per slot. It exists so a hole in that
// guarantee degrades to a predictable square instead of a panic.
var lastResortCrop = models.CropRect{X: 0, Y: 0, Width: 1000, Height: 1000}

// BuildPayload commits any pending live crop, renders every slot's
// effective crop to the fixed output raster and emits ordered
// image_<i>/crop_data_<i> part pairs.
func (a *Assembler) BuildPayload() (*Payload, *models.AppError) {
	if !a.sess.CanSubmit() {
		return nil, models.ErrBadRequest(
			fmt.Sprintf("submission requires %d slots with committed crops", models.RequiredCount))
	}

	slots := a.sess.SnapshotSlots()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for i, slot := range slots {
		rect := lastResortCrop
		if slot.Crop != nil {
			rect = *slot.Crop
		}

		rendered, err := crop.Render(slot.SourceBytes, rect)
		if err != nil {
			return nil, models.ErrInternal(fmt.Sprintf("render slot %d: %v", i, err))
		}

		part, err := w.CreateFormFile(fmt.Sprintf("image_%d", i), outputFileName(slot.FileName, i))
		if err != nil {
			return nil, models.ErrInternal(err.Error())
		}
		if _, err := part.Write(rendered); err != nil {
			return nil, models.ErrInternal(err.Error())
		}

		cropJSON, err := json.Marshal(rect)
		if err != nil {
			return nil, models.ErrInternal(err.Error())
		}
		if err := w.WriteField(fmt.Sprintf("crop_data_%d", i), string(cropJSON)); err != nil {
			return nil, models.ErrInternal(err.Error())
		}
	}

	if err := w.Close(); err != nil {
		return nil, models.ErrInternal(err.Error())
	}

	return &Payload{
		ContentType: w.FormDataContentType(),
		Body:        buf.Bytes(),
		Parts:       len(slots),
	}, nil
}

// Submit builds the payload, posts it and finalizes the order. Submitting
// rejects concurrent attempts for the same session; on failure the slot
// store is untouched and the session returns to idle with the error
// retained. A confirmed submission tears the session down and discards the
// order's persisted snapshot.
func (a *Assembler) Submit(ctx context.Context, orderID string) (*models.SendResult, *models.AppError) {
	a.mu.Lock()
	if a.submitting {
		a.mu.Unlock()
		return nil, models.ErrConflict("submission already in progress")
	}
	a.submitting = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.submitting = false
		a.mu.Unlock()
	}()

	payload, appErr := a.BuildPayload()
	if appErr != nil {
		return nil, appErr
	}

	a.sess.SetPhase(session.PhaseSubmitting, "")

	if err := a.svc.SubmitImages(ctx, orderID, payload.ContentType, bytes.NewReader(payload.Body)); err != nil {
		a.sess.SetPhase(session.PhaseIdle, err.Error())
		return nil, models.ErrUpstream(err.Error())
	}

	result, err := a.svc.SendOrder(ctx, orderID)
	if err != nil {
		a.sess.SetPhase(session.PhaseIdle, err.Error())
		return nil, models.ErrUpstream(err.Error())
	}

	a.sess.ClearAll()
	a.sess.SetPhase(session.PhaseConfirmed, "")
	_ = a.codec.Discard(ctx, orderID)
	return result, nil
}

// outputFileName derives the uploaded file name for slot i. Rendering
// always produces JPEG, so the source extension is replaced.
func outputFileName(name string, i int) string {
	if name == "" {
		return fmt.Sprintf("image_%d.jpg", i)
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return base + ".jpg"
}
