package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	UserTypeSuperAdmin = "super_admin"
	UserTypeTPSite     = "tp_site"
	UserGroupTP        = "TP"
)

var ErrUnauthenticated = errors.New("missing user session")

// Session is the operator identity the gateway forwards with every request.
// It is read once at the edge and passed explicitly to usecases.
type Session struct {
	UserID         string
	UserType       string
	UserGroupName  string
	OrganizationID *int64
	SiteProfileID  *int64
}

func (s Session) IsSuperAdmin() bool { return s.UserType == UserTypeSuperAdmin }
func (s Session) IsTPSite() bool     { return s.UserType == UserTypeTPSite }

func (s Session) IsTPUser() bool {
	return s.UserGroupName == UserGroupTP && s.OrganizationID != nil
}

// Authenticated reports whether the gateway sent a user at all.
func (s Session) Authenticated() bool { return s.UserID != "" }

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionKey{}).(Session); ok {
		return s
	}
	return Session{}
}

const (
	headerUserID         = "X-User-Id"
	headerUserType       = "X-User-Type"
	headerUserGroup      = "X-User-Group"
	headerOrganizationID = "X-Organization-Id"
	headerSiteProfileID  = "X-Site-Profile-Id"
)

// HTTPMiddleware builds the Session from gateway headers.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := Session{
			UserID:         r.Header.Get(headerUserID),
			UserType:       r.Header.Get(headerUserType),
			UserGroupName:  r.Header.Get(headerUserGroup),
			OrganizationID: parseID(r.Header.Get(headerOrganizationID)),
			SiteProfileID:  parseID(r.Header.Get(headerSiteProfileID)),
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// UnaryInterceptor does the same for gRPC metadata (lower-cased header names).
func UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			s := Session{
				UserID:         first(md, "x-user-id"),
				UserType:       first(md, "x-user-type"),
				UserGroupName:  first(md, "x-user-group"),
				OrganizationID: parseID(first(md, "x-organization-id")),
				SiteProfileID:  parseID(first(md, "x-site-profile-id")),
			}
			ctx = WithSession(ctx, s)
		}
		return handler(ctx, req)
	}
}

func first(md metadata.MD, key string) string {
	if val := md.Get(key); len(val) > 0 {
		return val[0]
	}
	return ""
}

func parseID(v string) *int64 {
	if v == "" {
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
