package requestctx

import "context"

type userContextKey struct{}

type authTokenContextKey struct{}

type requestIDContextKey struct{}

// WithUser guarda el usuario que opera la caja en el contexto
func WithUser(ctx context.Context, user string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext devuelve el usuario guardado en el contexto
func UserFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(userContextKey{}).(string)
	return value
}

// WithAuthToken guarda el header Authorization para reenviarlo al backend
func WithAuthToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, authTokenContextKey{}, token)
}

// AuthTokenFromContext devuelve el token guardado en el contexto
func AuthTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(authTokenContextKey{}).(string)
	return value
}

// WithRequestID guarda el identificador de la petición
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext devuelve el identificador de la petición
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}
