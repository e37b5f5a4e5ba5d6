package domain

// EventType identifies a viewer notification on the event bus.
type EventType int

// Event types.
const (
	EventDocumentLoaded EventType = iota + 1
	EventDocumentClosed
	EventPageRendered
	EventPageRenderFailed
	EventScaleChanged
	EventPageChanged
	EventScroll
	EventTextLayerReady
	EventRenderingIdle
	EventFindUpdated
	EventExtractionFailed
	EventAnnotationAdded
	EventAnnotationRemoved
)

var eventNames = map[EventType]string{
	EventDocumentLoaded:    "document_loaded",
	EventDocumentClosed:    "document_closed",
	EventPageRendered:      "page_rendered",
	EventPageRenderFailed:  "page_render_failed",
	EventScaleChanged:      "scale_changed",
	EventPageChanged:       "page_changed",
	EventScroll:            "scroll",
	EventTextLayerReady:    "text_layer_ready",
	EventRenderingIdle:     "rendering_idle",
	EventFindUpdated:       "find_updated",
	EventExtractionFailed:  "extraction_failed",
	EventAnnotationAdded:   "annotation_added",
	EventAnnotationRemoved: "annotation_removed",
}

// String returns the event name.
func (t EventType) String() string {
	if n, ok := eventNames[t]; ok {
		return n
	}
	return "unknown"
}

// Event is a single notification.
// Fields other than Type are set only when meaningful for the type.
type Event struct {
	Type  EventType
	Page  int
	Scale float64
	Err   error

	// Payload carries type-specific data, e.g. []TextRun for
	// EventTextLayerReady or *Annotation for EventAnnotationAdded.
	Payload any
}
