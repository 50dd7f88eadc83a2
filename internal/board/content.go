package board

import "canvas/internal/domain"

// SetIcon assigns the fixed icon payload.
func SetIcon(s domain.CanvasState, id string) domain.CanvasState {
	return ReplaceContent(s, id, domain.NewIcon())
}

// SetText assigns user text. An empty string means the prompt was cancelled
// and leaves the block untouched.
func SetText(s domain.CanvasState, id, text string) domain.CanvasState {
	if text == "" {
		return s
	}
	return ReplaceContent(s, id, domain.TextContent{Text: text})
}

// SetImage assigns an encoded image. Resolved by id, so a completion that
// arrives after the block was deleted does nothing.
func SetImage(s domain.CanvasState, id, dataURI string) domain.CanvasState {
	return ReplaceContent(s, id, domain.ImageContent{DataURI: dataURI})
}

// SetTable assigns generated rows.
func SetTable(s domain.CanvasState, id string, rows []*domain.Row) domain.CanvasState {
	return ReplaceContent(s, id, domain.TableContent{Rows: rows})
}

// ── Table prompt dialog ───────────────────────────────────

// OpenTableDialog opens the prompt dialog for block id.
func OpenTableDialog(s domain.CanvasState, id string) domain.CanvasState {
	if !Has(s, id) {
		return s
	}
	s.TableDialog = &domain.TableDialog{BlockID: id}
	return s
}

// CloseTableDialog dismisses the dialog. An in-flight request is not cancelled.
func CloseTableDialog(s domain.CanvasState) domain.CanvasState {
	s.TableDialog = nil
	return s
}

// SubmitTablePrompt marks the dialog as waiting for requestID. When no dialog
// is open for the block (e.g. a request issued programmatically) the state is
// returned unchanged.
func SubmitTablePrompt(s domain.CanvasState, id, requestID string) domain.CanvasState {
	if s.TableDialog == nil || s.TableDialog.BlockID != id {
		return s
	}
	s.TableDialog = &domain.TableDialog{BlockID: id, RequestID: requestID, Pending: true}
	return s
}

// CompleteTable applies a successful response: the rows replace the block's
// content if it still exists, and the dialog closes if it is still waiting on
// this request.
func CompleteTable(s domain.CanvasState, id, requestID string, rows []*domain.Row) domain.CanvasState {
	s = SetTable(s, id, rows)
	if ownsDialog(s, requestID) {
		s.TableDialog = nil
	}
	return s
}

// FailTable records a failed request: content is untouched and the dialog
// stays open for another attempt or dismissal.
func FailTable(s domain.CanvasState, requestID string) domain.CanvasState {
	if ownsDialog(s, requestID) {
		d := *s.TableDialog
		d.Pending = false
		d.RequestID = ""
		s.TableDialog = &d
	}
	return s
}

func ownsDialog(s domain.CanvasState, requestID string) bool {
	return s.TableDialog != nil && requestID != "" && s.TableDialog.RequestID == requestID
}
