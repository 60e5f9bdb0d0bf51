package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"joyeria_admin/internal/apperr"
)

const (
	LoginMaxAttempts = 5
	LoginCooldown    = 15 * time.Minute
)

// LoginRateLimit bloque un email après LoginMaxAttempts échecs consécutifs, pendant LoginCooldown.
// Sans client Redis, la limite est désactivée.
func LoginRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		email := peekLoginEmail(c)
		if email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "admin:login_attempts:" + email
		cooldownKey := "admin:login_cooldown:" + email

		if ttl, err := rdb.TTL(ctx, cooldownKey).Result(); err == nil && ttl > 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			return
		}

		attempts, _ := rdb.Get(ctx, key).Int()
		if attempts >= LoginMaxAttempts {
			pipe := rdb.TxPipeline()
			pipe.Set(ctx, cooldownKey, "1", LoginCooldown)
			pipe.Del(ctx, key)
			_, _ = pipe.Exec(ctx)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			return
		}

		c.Next()

		// le statut n'est pas encore écrit quand le handler a poussé une erreur
		failed := c.Writer.Status() == http.StatusUnauthorized
		for _, e := range c.Errors {
			if apperr.HTTPStatus(e.Err) == http.StatusUnauthorized {
				failed = true
			}
		}

		if failed {
			pipe := rdb.TxPipeline()
			pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, LoginCooldown)
			_, _ = pipe.Exec(ctx)
			if remaining := LoginMaxAttempts - attempts - 1; remaining > 0 {
				c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
			}
			return
		}
		if len(c.Errors) == 0 && c.Writer.Status() < 400 {
			rdb.Del(ctx, key, cooldownKey)
		}
	}
}

// peekLoginEmail lit l'email du corps (JSON ou formulaire) sans le consommer
func peekLoginEmail(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var email string
	if strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded") {
		values, _ := url.ParseQuery(string(body))
		email = values.Get("email")
	} else {
		var input struct {
			Email string `json:"email"`
		}
		_ = json.Unmarshal(body, &input)
		email = input.Email
	}
	return strings.ToLower(strings.TrimSpace(email))
}
