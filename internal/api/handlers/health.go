package handlers

import "net/http"

const healthMessage = "Musikkhylla API is running!"

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: healthMessage})
}
