package models

// ChunkMetadata is the metadata carried by every indexed chunk.
// Field names match the keys persisted in the index store so that a
// document's indexed state can be reconstructed from any of its chunks.
type ChunkMetadata struct {
	// Source is the originating filename within the watched directory
	Source string `json:"source"`
	// Chunk is the dense per-document sequence number, starting at 0
	Chunk int `json:"chunk"`
	// Page is the 1-indexed page the chunk text originated from
	Page int `json:"page"`
	// ProcessedDate is the RFC3339 timestamp of the ingestion pass
	ProcessedDate string `json:"processed_date"`
	// FileHash is the source document's content fingerprint at chunking time
	FileHash string `json:"file_hash"`
}

// Chunk is the atomic indexed unit of extracted document text.
// Chunks are immutable once created; a document update deletes the old
// set for that filename and inserts a fresh one.
type Chunk struct {
	// ID is "<filename>-chunk-<sequence>", stable until re-chunking
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// DocumentInfo summarizes one indexed document, derived by scanning
// all chunk metadata for a source filename.
type DocumentInfo struct {
	ProcessedDate string `json:"processed_date"`
	TotalPages    int    `json:"total_pages"`
}
