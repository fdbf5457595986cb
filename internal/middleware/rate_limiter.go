package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

type ventana struct {
	count int
	fin   time.Time
}

// fixedWindow counts requests per key in fixed windows. Each RateLimiter
// owns its own map.
type fixedWindow struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	ventanas    map[string]*ventana
	ultimaPurga time.Time
}

// allow registers one hit for key and reports whether it is within limit,
// plus the end of the current window.
func (f *fixedWindow) allow(key string, now time.Time) (bool, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if now.Sub(f.ultimaPurga) >= purgeInterval {
		f.purge(now)
	}

	v, ok := f.ventanas[key]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(f.window)}
		f.ventanas[key] = v
	}
	v.count++
	return v.count <= f.limit, v.fin
}

// purge drops expired windows so clients that never return do not accumulate.
func (f *fixedWindow) purge(now time.Time) {
	purged := 0
	for k, v := range f.ventanas {
		if now.After(v.fin) {
			delete(f.ventanas, k)
			purged++
		}
	}
	f.ultimaPurga = now
	if purged > 0 {
		log.Debug().Int("entries_purged", purged).Int("entries_remaining", len(f.ventanas)).Msg("rate limiter purged")
	}
}

// rateKey identifies the caller: the JWT subject once authenticated,
// otherwise the client IP.
func rateKey(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil && claims.Username != "" {
		return "u:" + claims.Username
	}
	return "ip:" + c.ClientIP()
}

// RateLimiter allows limit requests per window per caller.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	fw := &fixedWindow{limit: limit, window: window, ventanas: make(map[string]*ventana)}
	return func(c *gin.Context) {
		now := time.Now()
		ok, fin := fw.allow(rateKey(c), now)
		if !ok {
			secs := int(fin.Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
