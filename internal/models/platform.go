package models

// GameDataRecord is the platform API DTO returned by GET /api/gameData and
// GET /api/searchGameData. Data is either a JSON-encoded string or an
// already-decoded object; the payload unwrapper handles both.
type GameDataRecord struct {
	ID                string `json:"id"`
	Data              any    `json:"data"`
	ExerciseID        string `json:"exerciseId,omitempty"`
	GameConfigID      string `json:"gameConfigId,omitempty"`
	OrganizationID    string `json:"organizationId,omitempty"`
	UserID            string `json:"userId,omitempty"`
	CreationTimestamp int64  `json:"creationTimestamp,omitempty"` // epoch millis
}

// Raw flattens the DTO into the heterogeneous-record shape the field
// resolver operates on.
func (r GameDataRecord) Raw() map[string]any {
	raw := map[string]any{
		"id":   r.ID,
		"data": r.Data,
	}
	if r.ExerciseID != "" {
		raw["exerciseId"] = r.ExerciseID
	}
	if r.GameConfigID != "" {
		raw["gameConfigId"] = r.GameConfigID
	}
	if r.OrganizationID != "" {
		raw["organizationId"] = r.OrganizationID
	}
	if r.UserID != "" {
		raw["userId"] = r.UserID
	}
	if r.CreationTimestamp != 0 {
		raw["creationTimestamp"] = r.CreationTimestamp
	}
	return raw
}
