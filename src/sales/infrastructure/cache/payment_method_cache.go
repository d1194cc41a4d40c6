package cache

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// PaymentMethod representa un método de pago en el cache
type PaymentMethod struct {
	Code string
	Name string
}

// PaymentMethodCache cache en memoria de nombres de métodos de pago para el ticket
type PaymentMethodCache struct {
	methods map[string]PaymentMethod
	mu      sync.RWMutex
	log     logrus.FieldLogger
}

// NewPaymentMethodCache crea un cache con los nombres por defecto de caja
func NewPaymentMethodCache(log logrus.FieldLogger) *PaymentMethodCache {
	return &PaymentMethodCache{
		methods: map[string]PaymentMethod{
			"CASH":    {Code: "CASH", Name: "Efectivo"},
			"DIGITAL": {Code: "DIGITAL", Name: "Yape"},
			"MIXED":   {Code: "MIXED", Name: "Mixto"},
		},
		log: log,
	}
}

// LoadFromDB reemplaza los nombres con los configurados en la tabla payment_methods.
// Los códigos que no estén en la tabla conservan su nombre por defecto.
func (c *PaymentMethodCache) LoadFromDB(ctx context.Context, db *sql.DB) error {
	c.log.Info("🔄 Loading payment methods into cache...")

	query := `
		SELECT code, name
		FROM payment_methods
		WHERE is_active = true
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		c.log.WithError(err).Warn("⚠️ Could not load payment methods, using defaults")
		return err
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var pm PaymentMethod
		if err := rows.Scan(&pm.Code, &pm.Name); err != nil {
			c.log.WithError(err).Warn("⚠️ Error scanning payment method")
			continue
		}
		pm.Code = strings.ToUpper(strings.TrimSpace(pm.Code))
		c.methods[pm.Code] = pm
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.log.WithField("count", count).Info("✅ Loaded payment methods into cache")
	return nil
}

// Get obtiene un método de pago por código
func (c *PaymentMethodCache) Get(code string) (PaymentMethod, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pm, ok := c.methods[strings.ToUpper(code)]
	return pm, ok
}

// DisplayName obtiene solo el nombre; si no existe devuelve el código
func (c *PaymentMethodCache) DisplayName(code string) string {
	pm, ok := c.Get(code)
	if !ok {
		return code
	}
	return pm.Name
}
