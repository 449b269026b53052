package bridge

// KeyEventType is the DOM keyboard event name.
type KeyEventType string

const (
	KeyPress KeyEventType = "keypress"
	KeyDown  KeyEventType = "keydown"
	KeyUp    KeyEventType = "keyup"
)

// InputTypeDeleteBackward is the InputEvent.inputType of a backspace.
const InputTypeDeleteBackward = "deleteContentBackward"

// BackspaceCode is the KeyboardEvent.code used for synthesized deletions.
const BackspaceCode = "Backspace"

// KeyEvent is a synthetic keyboard event for the program's input channel.
type KeyEvent struct {
	Type        KeyEventType
	Key         string
	Code        string
	CharCode    int
	IsComposing bool
}

// InputEvent is the part of a DOM InputEvent the bridge looks at.
type InputEvent struct {
	InputType   string
	Data        string
	IsComposing bool
}

// TextKeyEvents turns committed text into one keypress per code point, in
// order. The text is forwarded exactly as the input method delivered it.
func TextKeyEvents(data string, composing bool) []KeyEvent {
	if data == "" {
		return nil
	}

	events := make([]KeyEvent, 0, len(data))
	for _, r := range data {
		events = append(events, KeyEvent{
			Type:        KeyPress,
			Key:         string(r),
			CharCode:    int(r),
			IsComposing: composing,
		})
	}
	return events
}

// InputKeyEvents translates an input event from the text entry element.
//
// keypress never carries deletions, so a backward delete becomes a
// keydown/keyup pair for Backspace. Input that is still being composed is
// dropped; compositionend delivers the final text.
func InputKeyEvents(ev InputEvent) []KeyEvent {
	if ev.InputType == InputTypeDeleteBackward {
		key := KeyEvent{Key: BackspaceCode, Code: BackspaceCode, IsComposing: ev.IsComposing}
		down, up := key, key
		down.Type = KeyDown
		up.Type = KeyUp
		return []KeyEvent{down, up}
	}
	if ev.IsComposing {
		return nil
	}
	return TextKeyEvents(ev.Data, ev.IsComposing)
}
