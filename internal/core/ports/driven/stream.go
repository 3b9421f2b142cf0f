package driven

import "github.com/custodia-labs/ragchat-cli/internal/core/domain"

// StreamHandlers receives decoded chat stream events. Nil handlers are skipped.
// OnDone and OnError are mutually exclusive terminal signals.
type StreamHandlers struct {
	// OnContent receives each text fragment in arrival order.
	OnContent func(text string)
	// OnGrounding receives citation sources; it may fire more than once.
	OnGrounding func(chunks []domain.GroundingChunk)
	// OnDone carries the authoritative final text and sources.
	OnDone func(fullText string, chunks []domain.GroundingChunk)
	// OnError carries the backend's error message and optional code.
	OnError func(message, code string)
}

// Dispatch routes one event to its handler. Unknown types return false.
func (h StreamHandlers) Dispatch(ev domain.StreamEvent) bool {
	switch ev.Type {
	case domain.EventContent:
		if h.OnContent != nil {
			h.OnContent(ev.Text)
		}
	case domain.EventGrounding:
		if h.OnGrounding != nil {
			h.OnGrounding(ev.GroundingChunks)
		}
	case domain.EventDone:
		if h.OnDone != nil {
			h.OnDone(ev.FullText, ev.GroundingChunks)
		}
	case domain.EventError:
		if h.OnError != nil {
			h.OnError(ev.Message, ev.Code)
		}
	default:
		return false
	}
	return true
}
