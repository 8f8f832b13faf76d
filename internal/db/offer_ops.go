package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/pkg/errors"

	"OrandaBot/internal/models"
)

// offerColumns - колонки offers в порядке сканирования (см. scanOffer).
var offerColumns = func() string {
	cols := []string{"id", "creator_id", "creator_name"}
	for _, f := range models.Fields {
		cols = append(cols, string(f.Key))
	}
	cols = append(cols, "status", "group_chat_id", "group_message_id", "created_at", "updated_at")
	return strings.Join(cols, ", ")
}()

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(row rowScanner) (models.Offer, error) {
	var (
		offer       models.Offer
		creatorName sql.NullString
		status      sql.NullString
		groupChatID sql.NullInt64
		groupMsgID  sql.NullInt64
	)
	dest := []interface{}{&offer.ID, &offer.Creator.ID, &creatorName}
	for _, f := range models.Fields {
		dest = append(dest, &offer.FieldPointer(f.Key).NullString)
	}
	dest = append(dest, &status, &groupChatID, &groupMsgID, &offer.CreatedAt, &offer.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return models.Offer{}, err
	}
	offer.Creator.Name = creatorName.String
	offer.Status = models.Status(status.String)
	if groupChatID.Valid && groupMsgID.Valid {
		offer.GroupPost = &models.GroupPost{ChatID: groupChatID.Int64, MessageID: int(groupMsgID.Int64)}
	}
	offer.CreatedAt = offer.CreatedAt.UTC()
	offer.UpdatedAt = offer.UpdatedAt.UTC()
	offer.Photos = []string{}
	return offer, nil
}

// CreateOffer создаёт пустую пропозицию и возвращает её номер.
// Номер - автоинкрементный первичный ключ, поэтому после перезапуска номера не повторяются.
func (s *Store) CreateOffer(ctx context.Context, creator models.Actor) (int64, error) {
	now := s.now()
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
        INSERT INTO offers (creator_id, creator_name, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        RETURNING id`),
		creator.ID, models.NewNullString(creator.Name), now, now,
	).Scan(&id)
	if err != nil {
		log.Printf("CreateOffer: Ошибка создания пропозиции для пользователя %d: %v", creator.ID, err)
		return 0, errors.Wrap(err, "создание пропозиции")
	}
	log.Printf("Пропозиция #%s создана пользователем %d.", models.FormatNumber(id), creator.ID)
	return id, nil
}

// GetOffer возвращает пропозицию вместе с фото. Если её нет - models.ErrOfferNotFound.
func (s *Store) GetOffer(ctx context.Context, id int64) (models.Offer, error) {
	offer, err := scanOffer(s.db.QueryRowContext(ctx,
		s.rebind("SELECT "+offerColumns+" FROM offers WHERE id = ?"), id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Offer{}, errors.Wrapf(models.ErrOfferNotFound, "пропозиция %d", id)
		}
		log.Printf("GetOffer: Ошибка чтения пропозиции #%d: %v", id, err)
		return models.Offer{}, errors.Wrapf(err, "чтение пропозиции %d", id)
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT file_id FROM offer_photos WHERE offer_id = ? ORDER BY id"), id)
	if err != nil {
		return models.Offer{}, errors.Wrapf(err, "чтение фото пропозиции %d", id)
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return models.Offer{}, errors.Wrapf(err, "сканирование фото пропозиции %d", id)
		}
		offer.Photos = append(offer.Photos, ref)
	}
	if err := rows.Err(); err != nil {
		return models.Offer{}, errors.Wrapf(err, "итерация фото пропозиции %d", id)
	}
	return offer, nil
}

// SetField перезаписывает одно поле пропозиции. Значение обрезается; пустая строка сохраняется как NULL.
// Неизвестный ключ - ошибка программиста, поэтому panic.
func (s *Store) SetField(ctx context.Context, id int64, key models.FieldKey, value models.NullString) error {
	if _, ok := models.LookupField(key); !ok {
		panic(fmt.Sprintf("db.SetField: неизвестное поле пропозиции %q", key))
	}
	if value.Valid {
		value = models.NewNullString(value.String)
	}

	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE offers SET "+string(key)+" = ?, updated_at = ? WHERE id = ?"),
		value, s.now(), id)
	if err != nil {
		log.Printf("SetField: Ошибка обновления поля '%s' пропозиции #%d: %v", key, id, err)
		return errors.Wrapf(err, "обновление поля %s пропозиции %d", key, id)
	}
	if err := expectOneRow(res, id); err != nil {
		return err
	}
	log.Printf("Поле '%s' пропозиции #%s обновлено.", key, models.FormatNumber(id))
	return nil
}

// AddPhoto добавляет фото в конец списка и возвращает новое количество фото.
// UPDATE offers в начале транзакции блокирует строку, поэтому параллельные вызовы
// для одной пропозиции получают последовательные значения счётчика.
func (s *Store) AddPhoto(ctx context.Context, id int64, ref string) (count int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "начало транзакции AddPhoto")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := s.now()
	res, err := tx.ExecContext(ctx, s.rebind("UPDATE offers SET updated_at = ? WHERE id = ?"), now, id)
	if err != nil {
		return 0, errors.Wrapf(err, "обновление updated_at пропозиции %d", id)
	}
	if err = expectOneRow(res, id); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		s.rebind("INSERT INTO offer_photos (offer_id, file_id, created_at) VALUES (?, ?, ?)"),
		id, ref, now); err != nil {
		log.Printf("AddPhoto: Ошибка добавления фото к пропозиции #%d: %v", id, err)
		return 0, errors.Wrapf(err, "добавление фото к пропозиции %d", id)
	}
	if err = tx.QueryRowContext(ctx,
		s.rebind("SELECT COUNT(*) FROM offer_photos WHERE offer_id = ?"), id).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "подсчёт фото пропозиции %d", id)
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "фиксация транзакции AddPhoto")
	}
	return count, nil
}

// SetGroupPost сохраняет расположение контрольного сообщения в группе.
// Повторный вызов перезаписывает ссылку (используется при перепубликации после неудачного edit).
func (s *Store) SetGroupPost(ctx context.Context, id int64, post models.GroupPost) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
        UPDATE offers SET group_chat_id = ?, group_message_id = ?, updated_at = ?
        WHERE id = ?`),
		post.ChatID, post.MessageID, s.now(), id)
	if err != nil {
		log.Printf("SetGroupPost: Ошибка сохранения сообщения группы для пропозиции #%d: %v", id, err)
		return errors.Wrapf(err, "сохранение group_post пропозиции %d", id)
	}
	if err := expectOneRow(res, id); err != nil {
		return err
	}
	log.Printf("Пропозиция #%s: контрольное сообщение %d/%d сохранено.", models.FormatNumber(id), post.ChatID, post.MessageID)
	return nil
}

// RecordStatus атомарно меняет текущий статус пропозиции и добавляет запись в журнал.
// Либо обе записи, либо ни одной.
func (s *Store) RecordStatus(ctx context.Context, id int64, status models.Status, actor models.Actor) (err error) {
	if !status.Valid() {
		return fmt.Errorf("RecordStatus: недопустимый статус %q", status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "начало транзакции RecordStatus")
	}
	defer func() {
		if err != nil {
			log.Printf("RecordStatus: Откат транзакции для пропозиции #%d: %v", id, err)
			tx.Rollback()
		}
	}()

	now := s.now()
	res, err := tx.ExecContext(ctx,
		s.rebind("UPDATE offers SET status = ?, updated_at = ? WHERE id = ?"),
		string(status), now, id)
	if err != nil {
		return errors.Wrapf(err, "обновление статуса пропозиции %d", id)
	}
	if err = expectOneRow(res, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, s.rebind(`
        INSERT INTO status_events (offer_id, status, actor_id, actor_name, ts)
        VALUES (?, ?, ?, ?, ?)`),
		id, string(status), actor.ID, models.NewNullString(actor.Name), now); err != nil {
		return errors.Wrapf(err, "запись события статуса пропозиции %d", id)
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "фиксация транзакции RecordStatus")
	}
	log.Printf("Пропозиция #%s: статус %s установлен пользователем %d.", models.FormatNumber(id), status, actor.ID)
	return nil
}

// MarkPublished одной транзакцией сохраняет контрольное сообщение, ставит статус ACTIVE
// и пишет первое событие журнала. При ошибке не сохраняется ничего.
func (s *Store) MarkPublished(ctx context.Context, id int64, post models.GroupPost, actor models.Actor) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "начало транзакции MarkPublished")
	}
	defer func() {
		if err != nil {
			log.Printf("MarkPublished: Откат транзакции для пропозиции #%d: %v", id, err)
			tx.Rollback()
		}
	}()

	now := s.now()
	res, err := tx.ExecContext(ctx, s.rebind(`
        UPDATE offers SET group_chat_id = ?, group_message_id = ?, status = ?, updated_at = ?
        WHERE id = ?`),
		post.ChatID, post.MessageID, string(models.StatusActive), now, id)
	if err != nil {
		return errors.Wrapf(err, "публикация пропозиции %d", id)
	}
	if err = expectOneRow(res, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, s.rebind(`
        INSERT INTO status_events (offer_id, status, actor_id, actor_name, ts)
        VALUES (?, ?, ?, ?, ?)`),
		id, string(models.StatusActive), actor.ID, models.NewNullString(actor.Name), now); err != nil {
		return errors.Wrapf(err, "запись первого события пропозиции %d", id)
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "фиксация транзакции MarkPublished")
	}
	log.Printf("Пропозиция #%s опубликована: сообщение %d/%d, автор %d.", models.FormatNumber(id), post.ChatID, post.MessageID, actor.ID)
	return nil
}

// ListOffers возвращает все пропозиции по возрастанию номера (экспорт, API).
func (s *Store) ListOffers(ctx context.Context) ([]models.Offer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+offerColumns+" FROM offers ORDER BY id")
	if err != nil {
		log.Printf("ListOffers: Ошибка выборки пропозиций: %v", err)
		return nil, errors.Wrap(err, "выборка пропозиций")
	}
	var offers []models.Offer
	index := make(map[int64]int)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "сканирование пропозиции")
		}
		index[offer.ID] = len(offers)
		offers = append(offers, offer)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "итерация пропозиций")
	}

	photoRows, err := s.db.QueryContext(ctx, "SELECT offer_id, file_id FROM offer_photos ORDER BY offer_id, id")
	if err != nil {
		return nil, errors.Wrap(err, "выборка фото")
	}
	defer photoRows.Close()
	for photoRows.Next() {
		var offerID int64
		var ref string
		if err := photoRows.Scan(&offerID, &ref); err != nil {
			return nil, errors.Wrap(err, "сканирование фото")
		}
		if i, ok := index[offerID]; ok {
			offers[i].Photos = append(offers[i].Photos, ref)
		}
	}
	if err := photoRows.Err(); err != nil {
		return nil, errors.Wrap(err, "итерация фото")
	}
	return offers, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "RowsAffected")
	}
	if n == 0 {
		return errors.Wrapf(models.ErrOfferNotFound, "пропозиция %d", id)
	}
	return nil
}
