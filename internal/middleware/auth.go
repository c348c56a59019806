package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const profileKey = "profile"

type ProfileFinder interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// Auth verifies the identity provider's HS256 session token and loads the
// caller's profile. The token subject is the user id.
func Auth(secret []byte, profiles ProfileFinder, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			userID, err := subject(raw, secret)
			if err != nil {
				log.Debug("reject session token", zap.Error(err))
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			profile, err := profiles.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "profile not found")
				}
				return echo.NewHTTPError(http.StatusBadGateway, "could not load profile").SetInternal(err)
			}

			SetProfile(c, profile)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func subject(raw string, secret []byte) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func SetProfile(c echo.Context, p *models.Profile) { c.Set(profileKey, p) }

// CurrentProfile returns the authenticated caller, or nil outside Auth.
func CurrentProfile(c echo.Context) *models.Profile {
	p, _ := c.Get(profileKey).(*models.Profile)
	return p
}

// OrganizerOnly rejects callers whose role is not organizer.
func OrganizerOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !CurrentProfile(c).IsOrganizer() {
			return echo.NewHTTPError(http.StatusForbidden, "organizer role required")
		}
		return next(c)
	}
}
