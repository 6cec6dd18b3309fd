package favorite

import "errors"

var (
	// ErrNotAuthenticated is returned before any remote call when there is no
	// session.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrWriteFailed      = errors.New("favorite write failed")
)

// LoginRequiredMessage is shown to visitors who try to save a favorite
// without signing in.
const LoginRequiredMessage = "Faça login para salvar favoritos."
