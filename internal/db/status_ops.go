package db

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/pkg/errors"

	"OrandaBot/internal/models"
)

// CountStatusEvents группирует журнал статусов за полуинтервал [start, end) по статусу и имени актёра.
// Имя актёра не подменяется: пустая строка означает анонимного пользователя.
func (s *Store) CountStatusEvents(ctx context.Context, start, end time.Time) ([]models.StatusCount, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
        SELECT status, COALESCE(actor_name, ''), COUNT(*)
        FROM status_events
        WHERE ts >= ? AND ts < ?
        GROUP BY status, COALESCE(actor_name, '')
        ORDER BY status, COALESCE(actor_name, '')`),
		start.UTC(), end.UTC())
	if err != nil {
		log.Printf("CountStatusEvents: Ошибка агрегации журнала статусов: %v", err)
		return nil, errors.Wrap(err, "агрегация журнала статусов")
	}
	defer rows.Close()

	var result []models.StatusCount
	for rows.Next() {
		var (
			status string
			row    models.StatusCount
		)
		if err := rows.Scan(&status, &row.Actor, &row.Count); err != nil {
			return nil, errors.Wrap(err, "сканирование агрегата статусов")
		}
		row.Status = models.Status(status)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "итерация агрегата статусов")
	}
	return result, nil
}

// ListStatusEvents возвращает журнал статусов пропозиции в порядке записи.
func (s *Store) ListStatusEvents(ctx context.Context, offerID int64) ([]models.StatusEvent, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
        SELECT id, offer_id, status, actor_id, actor_name, ts
        FROM status_events
        WHERE offer_id = ?
        ORDER BY id`), offerID)
	if err != nil {
		log.Printf("ListStatusEvents: Ошибка выборки журнала пропозиции #%d: %v", offerID, err)
		return nil, errors.Wrapf(err, "выборка журнала пропозиции %d", offerID)
	}
	defer rows.Close()

	events := []models.StatusEvent{}
	for rows.Next() {
		var (
			ev        models.StatusEvent
			status    string
			actorID   sql.NullInt64
			actorName sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.OfferID, &status, &actorID, &actorName, &ev.Timestamp); err != nil {
			return nil, errors.Wrap(err, "сканирование события статуса")
		}
		ev.Status = models.Status(status)
		ev.Actor = models.Actor{ID: actorID.Int64, Name: actorName.String}
		ev.Timestamp = ev.Timestamp.UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "итерация журнала статусов")
	}
	return events, nil
}
