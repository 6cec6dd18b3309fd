package listing

import "fmt"

// OpError is returned by a failed remote write. Message is safe to show to
// the end user.
type OpError struct {
	Op      string
	ID      string
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("listing %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

var opMessages = map[string]string{
	"create": "Erro ao cadastrar imóvel",
	"update": "Erro ao atualizar imóvel",
	"delete": "Erro ao excluir imóvel",
}

func opError(op, id string, err error) *OpError {
	return &OpError{Op: op, ID: id, Message: opMessages[op], Err: err}
}
