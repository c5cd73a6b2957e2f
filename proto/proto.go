package proto

const (
	ReqIdKey = "req-id"
)
