package storage

// MergeData combines accumulated flow data with newly collected fields.
// The result is a fresh map: new values win per key, old values survive
// otherwise, and neither input is mutated. A nil newData returns a copy of
// oldData so callers can advance Step without touching Data.
func MergeData(oldData, newData map[string]any) map[string]any {
	merged := make(map[string]any, len(oldData)+len(newData))
	for k, v := range oldData {
		merged[k] = v
	}
	for k, v := range newData {
		merged[k] = v
	}
	return merged
}
