package worker

// recordatorio_cron.go
// Periodically finds consignments still owing money RECORDATORIO_DIAS after
// delivery and enqueues one reminder email per client address. A Redis
// SETNX key per consignment keeps reminders at most one per period.

import (
	"context"
	"fmt"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/infra"
	"github.com/crisgp1/orodetamar-sub000/internal/model"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const recordatorioTickInterval = time.Hour

// RecordatorioCronConfig holds all dependencies for the reminder goroutine.
type RecordatorioCronConfig struct {
	Consignaciones repository.ConsignacionRepository
	Dispatcher     *Dispatcher
	CB             *infra.CircuitBreaker
	RDB            *redis.Client
	Dias           int
	Negocio        string
}

// StartRecordatorioCron ticks hourly until ctx is cancelled.
func StartRecordatorioCron(ctx context.Context, cfg RecordatorioCronConfig) {
	if cfg.Dias <= 0 {
		log.Info().Msg("recordatorio_cron: disabled (RECORDATORIO_DIAS <= 0)")
		return
	}
	go func() {
		ticker := time.NewTicker(recordatorioTickInterval)
		defer ticker.Stop()

		log.Info().Int("dias", cfg.Dias).Msg("recordatorio_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("recordatorio_cron: shutting down")
				return
			case <-ticker.C:
				if n, err := EnviarRecordatorios(ctx, cfg, time.Now()); err != nil {
					log.Error().Err(err).Msg("recordatorio_cron: tick failed")
				} else if n > 0 {
					log.Info().Int("enqueued", n).Msg("recordatorio_cron: reminders enqueued")
				}
			}
		}
	}()
}

// EnviarRecordatorios runs one scan and returns how many emails were enqueued.
func EnviarRecordatorios(ctx context.Context, cfg RecordatorioCronConfig, ahora time.Time) (int, error) {
	// Don't pile up mail while the relay is known to be down.
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("recordatorio_cron: circuit breaker is open, skipping tick")
		return 0, nil
	}

	periodo := time.Duration(cfg.Dias) * 24 * time.Hour
	pendientes, err := cfg.Consignaciones.ListSaldoPendienteAnteriores(ctx, ahora.Add(-periodo))
	if err != nil {
		return 0, fmt.Errorf("listar saldos pendientes: %w", err)
	}

	enviados := 0
	for i := range pendientes {
		c := &pendientes[i]
		if c.Cliente == nil || c.Cliente.Email == nil || *c.Cliente.Email == "" {
			continue
		}

		key := fmt.Sprintf("recordatorio:consignacion:%d", c.ID)
		nuevo, err := cfg.RDB.SetNX(ctx, key, ahora.Unix(), periodo).Result()
		if err != nil {
			return enviados, fmt.Errorf("dedupe recordatorio %d: %w", c.ID, err)
		}
		if !nuevo {
			continue
		}

		if err := cfg.Dispatcher.EnqueueEmail(ctx, recordatorioEmail(cfg.Negocio, c, ahora)); err != nil {
			// Release the key so the next tick retries this consignment.
			cfg.RDB.Del(context.WithoutCancel(ctx), key)
			return enviados, fmt.Errorf("encolar recordatorio %d: %w", c.ID, err)
		}
		enviados++
	}
	return enviados, nil
}

func recordatorioEmail(negocio string, c *model.Consignacion, ahora time.Time) EmailJobPayload {
	dias := int(ahora.Sub(c.FechaEntrega).Hours() / 24)
	return EmailJobPayload{
		ToEmail: *c.Cliente.Email,
		Subject: fmt.Sprintf("%s: saldo pendiente de la consignacion #%d", negocio, c.ID),
		Body: fmt.Sprintf(
			"Hola %s,\n\nLe recordamos que la consignacion #%d entregada el %s (hace %d dias) tiene un saldo pendiente de $%s.\n\nGracias,\n%s\n",
			c.Cliente.Nombre, c.ID, c.FechaEntrega.Format("02/01/2006"), dias, c.SaldoPendiente().StringFixed(2), negocio,
		),
	}
}
