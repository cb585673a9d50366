package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/guardian"
	"github.com/tkabange/uangalizi/core/staff"
)

const (
	jwtContextKey = "userToken"
	roleGuardian  = "guardian"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

type authAPI struct {
	conf        *core.Config
	staffSvc    *staff.Service
	guardianSvc *guardian.Service
}

func newAuthAPI(conf *core.Config, staffSvc *staff.Service, guardianSvc *guardian.Service) *authAPI {
	return &authAPI{conf: conf, staffSvc: staffSvc, guardianSvc: guardianSvc}
}

func (api *authAPI) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(api.conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

func (api *authAPI) claimsFor(id, email, role string, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    api.conf.AppName,
			Subject:   id,
			ExpiresAt: now.Add(api.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        email,
		Role:         role,
		IsAdmin:      role == staff.RoleAdmin,
	}
}

// authenticate checks staff accounts first, then guardian accounts.
func (api *authAPI) authenticate(ctx echo.Context, email, pwd string) (*Claims, error) {
	stf, err := api.staffSvc.GetByEmail(ctx.Request().Context(), email)
	if err == nil {
		if err = stf.CheckPassword(pwd); err != nil {
			return nil, errAuthenticationFailed
		}
		if !stf.IsActive {
			return nil, errAccountDeactivated
		}
		if stf, err = api.staffSvc.SetLastLogin(ctx.Request().Context(), stf); err != nil {
			return nil, errors.Wrap(err, "setting lastLogin")
		}
		return api.claimsFor(stf.ID, stf.Email, stf.Role), nil
	}
	if errors.Cause(err) != staff.ErrNotFound {
		return nil, errors.Wrap(err, "finding staff by email")
	}

	grd, err := api.guardianSvc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding guardian by email")
	}
	if err = grd.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !grd.IsActive {
		return nil, errAccountDeactivated
	}
	return api.claimsFor(grd.ID, grd.Email, roleGuardian), nil
}

// generateToken generates a signed JWT token string representing the Claims.
func (api *authAPI) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(api.conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (api *authAPI) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(api.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := api.claimsFor(claims.Subject, claims.Email, claims.Role, claims.OrigIssuedAt)
	token, err := api.generateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *authAPI) {
	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/token-refresh", api.tokenRefresh, jwt)
}

func (api *authAPI) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := api.authenticate(ctx, data.Email, data.Password)
	if err != nil {
		return err
	}
	token, err := api.generateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authAPI) tokenRefresh(ctx echo.Context) error {
	token, err := api.refreshToken(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}
