package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

type Message struct {
	Type    string `json:"type"` // "error", etc
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// EncodeWriteJSON encodes payload straight into the response.
func EncodeWriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status) // headers frozen from here
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[ERROR] writing JSON to response: %v", err)
	}
}

func WriteSimpleErrorJSON(w http.ResponseWriter, status int, msg string) {
	EncodeWriteJSON(w, status, Message{Type: "error", Message: msg})
}

func WritePDFBytesWithFilename(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("[ERROR] writing PDF to response: %v", err)
	}
}
