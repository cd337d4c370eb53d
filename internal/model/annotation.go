package model

// Annotation is one error record of the submission format.
// Sentence ids and token positions are 1-indexed and inclusive.
type Annotation struct {
	TextID       string `json:"text_id"`
	SentenceID   int    `json:"sentence_id"`
	AnnotationID int    `json:"annotation_id"`
	Tokens       string `json:"tokens"`
	SentStart    int    `json:"sent_token_start"`
	SentEnd      int    `json:"sent_token_end"`
	DocStart     int    `json:"doc_token_start"`
	DocEnd       int    `json:"doc_token_end"`
	Type         Label  `json:"type"`
	Correction   string `json:"correction,omitempty"`
	Comment      string `json:"comment,omitempty"`
}
