package notification

import (
    "net/http"

    "github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
    sub := router.PathPrefix("/api/v1/notifications").Subrouter()
    sub.Use(authMiddleware)

    sub.HandleFunc("/ws", handler.ServeWS).Methods(http.MethodGet)
}
