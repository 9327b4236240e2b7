package domain

// CharacterUpdate is one character delta inside a state update batch.
type CharacterUpdate struct {
	CharacterID       string `json:"character_id"`
	Appearance        string `json:"appearance,omitempty"`
	CustomizationJSON string `json:"customization,omitempty"`
}

// InventoryUpdate is one inventory delta inside a state update batch.
// QuantityDelta may be negative; a stack reaching zero is removed.
type InventoryUpdate struct {
	ItemID        string `json:"item_id"`
	QuantityDelta int    `json:"quantity_delta"`
	Status        string `json:"status,omitempty"`
}

// QuestUpdate is one quest delta inside a state update batch.
type QuestUpdate struct {
	QuestID       string `json:"quest_id"`
	ProgressDelta int    `json:"progress_delta"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

// StateUpdateBatch carries the concurrent deltas one caller submits against a
// session, together with the version the batch was computed against. The
// batch is ephemeral: it exists only for the duration of one sequencer call.
type StateUpdateBatch struct {
	SessionID        string
	ExpectedVersion  uint64
	CharacterChanges []CharacterUpdate
	InventoryUpdates []InventoryUpdate
	QuestUpdates     []QuestUpdate
}
