package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/common"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const limiterTTL = 10 * time.Minute

type usernamed interface {
	GetUsername() string
}

func usernameOf(req any) string {
	if u, ok := req.(usernamed); ok {
		return u.GetUsername()
	}
	return ""
}

func clientVersion(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(common.ClientVersionHeaderName); len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// loggingInterceptor logs one line per call. Request bodies are never
// logged: they carry keys and ciphertext.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "rpc",
		"method", info.FullMethod,
		"username", usernameOf(req),
		"client_version", clientVersion(ctx),
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}

// rateLimitInterceptor applies a token bucket per username. Requests
// without a username (Ping, GetConfig) are not limited.
func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limiter == nil {
		return handler(ctx, req)
	}
	if u := usernameOf(req); u != "" && !s.limiter.allow(u) {
		return nil, status.Error(codes.ResourceExhausted, "too many requests")
	}
	return handler(ctx, req)
}

// userLimiter keeps one token bucket per key. Buckets idle for longer than
// ttl are dropped by a sweep that runs at most once per ttl.
type userLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	now       func() time.Time
	buckets   map[string]*limBucket
	lastSweep time.Time
}

type limBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newUserLimiter(limit rate.Limit, burst int, ttl time.Duration) *userLimiter {
	if burst < 1 {
		burst = 1
	}
	return &userLimiter{
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		buckets: make(map[string]*limBucket),
	}
}

func (m *userLimiter) allow(key string) bool {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.buckets[key]
	if b == nil {
		b = &limBucket{lim: rate.NewLimiter(m.limit, m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now

	if now.Sub(m.lastSweep) >= m.ttl {
		m.sweep(now)
	}
	return b.lim.AllowN(now, 1)
}

func (m *userLimiter) sweep(now time.Time) {
	for k, v := range m.buckets {
		if now.Sub(v.lastSeen) > m.ttl {
			delete(m.buckets, k)
		}
	}
	m.lastSweep = now
}

func (m *userLimiter) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}
