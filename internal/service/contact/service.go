// Package contact implements contact listing, opt-out toggling and CSV ingestion.
package contact

import (
	"context"
	"io"
	"mime/multipart"
	"os"

	"go.uber.org/zap"

	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/dao/database/repository"
	myredis "sms_campaign_server/internal/dao/redis"
	"sms_campaign_server/internal/dto/respond"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/model"
	"sms_campaign_server/internal/service/contactlist"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"
)

type contactService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	publisher events.Publisher
	upload    config.UploadConfig
}

// NewContactService creates the service. cache may be nil.
func NewContactService(repos *repository.Repositories, cache myredis.AsyncCacheService, publisher events.Publisher, upload config.UploadConfig) *contactService {
	if upload.BatchSize <= 0 {
		upload.BatchSize = constants.UPLOAD_BATCH_SIZE
	}
	return &contactService{repos: repos, cache: cache, publisher: publisher, upload: upload}
}

// ListContacts returns contacts newest-first with their lists and latest message.
func (s *contactService) ListContacts(ctx context.Context) ([]respond.ContactRespond, error) {
	contacts, err := s.repos.Contact.FindAll(ctx)
	if err != nil {
		zap.L().Error("list contacts", zap.Error(err))
		return nil, err
	}
	ids := make([]uint, 0, len(contacts))
	for _, c := range contacts {
		ids = append(ids, c.ID)
	}
	latest, err := s.repos.Message.FindLatestByContactIDs(ctx, ids)
	if err != nil {
		zap.L().Error("find latest messages", zap.Error(err))
		return nil, err
	}

	rsp := make([]respond.ContactRespond, 0, len(contacts))
	for i := range contacts {
		var msg *model.Message
		if m, ok := latest[contacts[i].ID]; ok {
			msg = &m
		}
		rsp = append(rsp, respond.NewContact(&contacts[i], msg))
	}
	return rsp, nil
}

// ToggleOptOut flips the contact's opt-out flag and announces the change.
func (s *contactService) ToggleOptOut(ctx context.Context, id uint) (*respond.ContactRespond, error) {
	var updated *model.Contact
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		c, err := tx.Contact.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Contact.SetOptOut(ctx, id, !c.OptedOut); err != nil {
			return err
		}
		c.OptedOut = !c.OptedOut
		updated = c
		return nil
	})
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Error("toggle opt-out", zap.Uint("contactID", id), zap.Error(err))
		}
		return nil, err
	}

	rsp := respond.NewContact(updated, nil)
	s.publisher.Publish(ctx, events.ContactUpdated, rsp)
	return &rsp, nil
}

// UploadContacts ingests a CSV file into listID. Existing phones gain a
// membership; new phones are created with one. The temporary copy of the
// upload is removed on every path.
func (s *contactService) UploadContacts(ctx context.Context, listID uint, file *multipart.FileHeader) (*respond.UploadContactsRespond, error) {
	if file == nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "csv file is required")
	}
	if limit := int64(s.upload.MaxSizeMB) << 20; limit > 0 && file.Size > limit {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "csv file exceeds %d MB", s.upload.MaxSizeMB)
	}
	if _, err := s.repos.ContactList.FindByID(ctx, listID); err != nil {
		return nil, err
	}

	path, err := s.saveTemp(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("remove upload temp file", zap.String("path", path), zap.Error(err))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "open upload")
	}
	defer f.Close()

	stats, err := ingestCSV(f, s.upload.BatchSize, func(batch []csvContact) error {
		return s.storeBatch(ctx, listID, batch)
	})
	if err != nil {
		zap.L().Error("ingest contacts", zap.Uint("listID", listID), zap.Error(err))
		return nil, err
	}
	contactlist.InvalidateCache(ctx, s.cache)

	zap.L().Info("contacts uploaded",
		zap.Uint("listID", listID),
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped))
	s.publisher.Publish(ctx, events.ContactsUploaded, respond.ContactsUploadedEvent{Count: stats.Processed, ListID: listID})

	return &respond.UploadContactsRespond{
		Success:           true,
		ContactsProcessed: stats.Processed,
		TotalRows:         stats.TotalRows,
		SkippedRows:       stats.Skipped,
	}, nil
}

// saveTemp copies the upload into the temp dir and returns the path.
func (s *contactService) saveTemp(file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.upload.TempDir, 0o755); err != nil {
		return "", errorx.Wrap(err, errorx.CodeServerBusy, "create upload dir")
	}
	src, err := file.Open()
	if err != nil {
		return "", errorx.Wrap(err, errorx.CodeInvalidParam, "read upload")
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.upload.TempDir, "contacts-*.csv")
	if err != nil {
		return "", errorx.Wrap(err, errorx.CodeServerBusy, "create upload temp file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", errorx.Wrap(err, errorx.CodeServerBusy, "save upload")
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", errorx.Wrap(err, errorx.CodeServerBusy, "save upload")
	}
	return dst.Name(), nil
}

// storeBatch writes one batch in a single transaction.
func (s *contactService) storeBatch(ctx context.Context, listID uint, batch []csvContact) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		phones := make([]string, 0, len(batch))
		for _, row := range batch {
			phones = append(phones, row.Phone)
		}
		existing, err := tx.Contact.FindByPhones(ctx, phones)
		if err != nil {
			return err
		}
		byPhone := make(map[string]uint, len(existing))
		for _, c := range existing {
			byPhone[c.Phone] = c.ID
		}

		ids := make([]uint, 0, len(batch))
		for _, row := range batch {
			if id, ok := byPhone[row.Phone]; ok {
				ids = append(ids, id)
				continue
			}
			c := &model.Contact{Phone: row.Phone, Name: row.Name, Email: row.Email}
			if err := tx.Contact.Create(ctx, c); err != nil {
				return err
			}
			byPhone[row.Phone] = c.ID
			ids = append(ids, c.ID)
		}
		return tx.Membership.UpsertMany(ctx, ids, listID)
	})
}
