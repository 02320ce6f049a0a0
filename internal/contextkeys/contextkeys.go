package contextkeys

// RequestIDKey — ключ gin-контекста, под которым хранится идентификатор запроса.
const RequestIDKey = "request_id"
