package derivation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github/chapool/hw-bridge/internal/hwwallet/connection"
	"github/chapool/hw-bridge/internal/hwwallet/registry"
)

type service struct {
	registry    registry.Registry
	connections connection.Manager
	maxPageSize int

	mu    sync.Mutex
	cache map[string]map[int]*Account // deviceID|sessionID -> index -> account

	group singleflight.Group
}

// NewService creates an account derivation service. maxPageSize caps the
// number of accounts a single call may request from the device.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(reg registry.Registry, connections connection.Manager, maxPageSize int) Service {
	svc := &service{
		registry:    reg,
		connections: connections,
		maxPageSize: maxPageSize,
		cache:       make(map[string]map[int]*Account),
	}

	connections.AddListener(svc)

	return svc
}

func cacheKey(deviceID, sessionID string) string {
	return deviceID + "|" + sessionID
}

func (s *service) LoadAccounts(ctx context.Context, deviceID string, pathRange PathRange) ([]*Account, error) {
	if pathRange.Count <= 0 || pathRange.Start < 0 || pathRange.Count > s.maxPageSize {
		return nil, errors.Wrapf(ErrInvalidRange, "start=%d count=%d max=%d", pathRange.Start, pathRange.Count, s.maxPageSize)
	}

	device, ok := s.registry.Get(deviceID)
	if !ok {
		return nil, connection.ErrDeviceNotFound
	}
	if !device.Ready() {
		return nil, connection.ErrDeviceNotReady
	}

	conn, sessionID, ok := s.connections.Conn(deviceID)
	if !ok {
		return nil, connection.ErrDeviceNotReady
	}

	if cached, ok := s.fromCache(deviceID, sessionID, pathRange); ok {
		return cached, nil
	}

	// Coalesce concurrent loads for the same device page: the device can only
	// process one command at a time, so the second caller waits for the
	// first result instead of issuing parallel device I/O. The exchange runs
	// detached from the first caller's context so its cancellation cannot
	// fail the callers sharing the flight.
	flightKey := fmt.Sprintf("%s|%s|%d|%d", deviceID, sessionID, pathRange.Start, pathRange.Count)
	exchangeCtx := context.WithoutCancel(ctx)
	result, err, shared := s.group.Do(flightKey, func() (any, error) {
		descriptors, err := conn.ListAccounts(exchangeCtx, pathRange)
		if err != nil {
			return nil, errors.Wrap(connection.ErrTransport, err.Error())
		}

		accounts := make([]*Account, 0, len(descriptors))
		for _, descriptor := range descriptors {
			if !common.IsHexAddress(descriptor.Address) {
				return nil, errors.Wrapf(connection.ErrTransport, "device returned malformed address %q", descriptor.Address)
			}

			accounts = append(accounts, &Account{
				DeviceID:       deviceID,
				SessionID:      sessionID,
				Address:        descriptor.Address,
				Index:          descriptor.Index,
				DerivationPath: descriptor.DerivationPath,
			})
		}

		s.store(deviceID, sessionID, accounts)

		return accounts, nil
	})

	if err != nil {
		return nil, err
	}

	if shared {
		log.Debug().Str("device_id", deviceID).Msg("Concurrent account load coalesced")
	}

	//nolint:forcetypeassert // singleflight result is always []*Account here
	return result.([]*Account), nil
}

func (s *service) Lookup(deviceID, sessionID, derivationPath string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byIndex, ok := s.cache[cacheKey(deviceID, sessionID)]
	if !ok {
		return nil, false
	}

	for _, account := range byIndex {
		if account.DerivationPath == derivationPath {
			return account, true
		}
	}

	return nil, false
}

func (s *service) fromCache(deviceID, sessionID string, pathRange PathRange) ([]*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byIndex, ok := s.cache[cacheKey(deviceID, sessionID)]
	if !ok {
		return nil, false
	}

	accounts := make([]*Account, 0, pathRange.Count)
	for i := pathRange.Start; i < pathRange.Start+pathRange.Count; i++ {
		account, ok := byIndex[i]
		if !ok {
			return nil, false
		}
		accounts = append(accounts, account)
	}

	return accounts, true
}

func (s *service) store(deviceID, sessionID string, accounts []*Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cacheKey(deviceID, sessionID)
	byIndex, ok := s.cache[key]
	if !ok {
		byIndex = make(map[int]*Account)
		s.cache[key] = byIndex
	}

	for _, account := range accounts {
		byIndex[account.Index] = account
	}
}

// DeviceConnected implements connection.Listener. A new session makes every
// previous cache entry for the device stale.
func (s *service) DeviceConnected(deviceID, sessionID string) {
	s.evict(deviceID, sessionID)
}

// DeviceDisconnected implements connection.Listener.
func (s *service) DeviceDisconnected(deviceID string) {
	s.evict(deviceID, "")
}

// evict drops all cache entries of a device except the one for keepSession.
func (s *service) evict(deviceID, keepSession string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.cache {
		if strings.HasPrefix(key, deviceID+"|") && key != cacheKey(deviceID, keepSession) {
			delete(s.cache, key)
		}
	}
}
