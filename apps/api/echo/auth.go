package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/auth"
	"github.com/sogrim/sogrim/core/user"
)

const (
	contextClaimsKey = "claims"
	contextUserKey   = "user"
	bearerPrefix     = "Bearer "
)

// authMiddleware validates the bearer token and stores its claims in the context.
func authMiddleware(conf *core.Config) echo.MiddlewareFunc {
	secret := []byte(conf.SecretKey)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return auth.ErrMissingToken
			}
			claims, err := auth.Parse(strings.TrimSpace(header[len(bearerPrefix):]), secret)
			if err != nil {
				return err
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

// permissionMiddleware only lets through users holding at least perm. Configured owner subjects are always owners.
func permissionMiddleware(conf *core.Config, svc *user.Service, perm user.Permissions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if conf.IsOwner(claims.Subject) {
				return next(ctx)
			}
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				if core.IsNotFound(err) {
					return errHttpForbidden
				}
				return errors.Wrap(err, "getting context user")
			}
			if !usr.Permissions.Allows(perm) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (*auth.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*auth.Claims); ok {
		return claims, nil
	}
	return nil, errUnauthorized
}

func getContextSubject(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func getContextUser(ctx echo.Context, svc *user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}
	usr, err := svc.GetByID(ctx.Request().Context(), sub)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
