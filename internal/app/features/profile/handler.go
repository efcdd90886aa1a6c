// internal/app/features/profile/handler.go
package profile

import (
	uierrors "github.com/akadox/akadox/internal/app/features/errors"
	profilestore "github.com/akadox/akadox/internal/app/store/profiles"
	"go.uber.org/zap"
)

// Handler owns the caller's profile pages.
type Handler struct {
	Profiles *profilestore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs a Handler bound to the profile store and logger.
func NewHandler(profiles *profilestore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profiles,
		Log:      logger,
		ErrLog:   errLog,
	}
}
