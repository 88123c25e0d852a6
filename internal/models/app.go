package models

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Messages   []Message        // Current transcript to display
	Input      string           // User input field (may contain newlines)
	Status     string           // Status bar text
	Generation GenerationStatus // Generation state from core
	ErrorTicks int              // Remaining status ticks before an error reverts to Ready
	SpinnerPos int              // Animation counter for the generating indicator
	Width      int              // Terminal width
	Height     int              // Terminal height
	Model      string           // Currently selected model
	Models     []string         // Models offered by the in-UI switcher
	ShowSystem bool             // Whether system/program notices are rendered
	ChatReady  bool             // Whether the chat service has a usable client
	HotkeyDesc string           // Human description of the active hotkey, if any
}
