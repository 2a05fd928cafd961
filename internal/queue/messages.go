package queue

// IngestPageMsg asks the worker to turn an uploaded page snapshot into
// page_lines rows.
type IngestPageMsg struct {
	Message      string `json:"message"`
	ConferenceID int64  `json:"conference_id"`
	PageID       int64  `json:"page_id"`
	FileKey      string `json:"file_key"`
}

// ExtractConferenceMsg asks the worker to run entity extraction over all of a
// conference's classified lines.
type ExtractConferenceMsg struct {
	Message      string `json:"message"`
	ConferenceID int64  `json:"conference_id"`
}
