// Package contactlist manages contact lists. Listings are cached.
package contactlist

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"sms_campaign_server/internal/dao/database/repository"
	myredis "sms_campaign_server/internal/dao/redis"
	"sms_campaign_server/internal/dto/respond"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"
)

type contactListService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService // nil disables caching
	publisher events.Publisher
}

// NewContactListService creates the service. cache may be nil.
func NewContactListService(repos *repository.Repositories, cache myredis.AsyncCacheService, publisher events.Publisher) *contactListService {
	return &contactListService{repos: repos, cache: cache, publisher: publisher}
}

// ListContactLists returns lists newest-first with member counts.
func (s *contactListService) ListContactLists(ctx context.Context) ([]respond.ContactListRespond, error) {
	if rsp, ok := s.fromCache(ctx); ok {
		return rsp, nil
	}

	lists, err := s.repos.ContactList.FindAllWithCounts(ctx)
	if err != nil {
		zap.L().Error("list contact lists", zap.Error(err))
		return nil, err
	}
	rsp := make([]respond.ContactListRespond, 0, len(lists))
	for i := range lists {
		rsp = append(rsp, respond.NewContactList(&lists[i].ContactList, lists[i].MemberCount))
	}
	s.storeCache(rsp)
	return rsp, nil
}

func (s *contactListService) fromCache(ctx context.Context) ([]respond.ContactListRespond, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.Get(ctx, constants.CONTACT_LIST_CACHE_KEY)
	if err != nil {
		// fall through to the database
		zap.L().Warn("read contact list cache", zap.Error(err))
		return nil, false
	}
	if cached == "" {
		return nil, false
	}
	var rsp []respond.ContactListRespond
	if err := json.Unmarshal([]byte(cached), &rsp); err != nil {
		zap.L().Error("decode contact list cache", zap.Error(err))
		return nil, false
	}
	return rsp, true
}

func (s *contactListService) storeCache(rsp []respond.ContactListRespond) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(rsp)
	if err != nil {
		zap.L().Error("encode contact list cache", zap.Error(err))
		return
	}
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(ctx, constants.CONTACT_LIST_CACHE_KEY, string(data), constants.REDIS_TIMEOUT*time.Minute); err != nil {
			zap.L().Warn("write contact list cache", zap.Error(err))
		}
	})
}

// CreateContactList stores a list under the normalized name and announces it.
// A taken name gets a uniqueness suffix instead of failing.
func (s *contactListService) CreateContactList(ctx context.Context, name, description string) (*respond.ContactListRespond, error) {
	if repository.NormalizeListName(name) == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "list name is required")
	}
	list, err := s.repos.ContactList.CreateUnique(ctx, name, strings.TrimSpace(description))
	if err != nil {
		zap.L().Error("create contact list", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	InvalidateCache(ctx, s.cache)

	rsp := respond.NewContactList(list, 0)
	s.publisher.Publish(ctx, events.ContactListCreated, rsp)
	return &rsp, nil
}

// InvalidateCache drops the cached listing after membership or list changes.
func InvalidateCache(ctx context.Context, cache myredis.CacheService) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, constants.CONTACT_LIST_CACHE_KEY); err != nil {
		zap.L().Warn("invalidate contact list cache", zap.Error(err))
	}
}
