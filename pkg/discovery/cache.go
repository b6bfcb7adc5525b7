package discovery

import (
	"fmt"
	"net"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/squeezelite-go/slimproto/pkg/session"
)

// cachedServer is the persisted row for one discovered server, keyed by
// the network it was found on. It is a cache only: nothing here
// implements a reconnection policy, it merely remembers what Discover
// already returned so a caller can seed a retry without waiting out a
// fresh broadcast.
type cachedServer struct {
	Network string `gorm:"primaryKey"`
	IP      string
	Port    uint16
	Name    string
	Version string
	SeenAt  time.Time
}

func (cachedServer) TableName() string {
	return "discovered_servers"
}

// Cache persists the most recently discovered Server per network to a
// SQLite file, grounded on the teacher's DbTx-over-gorm wrapper in
// pkg/database.
type Cache struct {
	db *gorm.DB
}

// OpenCache opens (creating if necessary) a SQLite-backed Cache at
// path.
func OpenCache(path string) (*Cache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("slimproto/discovery: open cache: %w", err)
	}
	if err := db.AutoMigrate(&cachedServer{}); err != nil {
		return nil, fmt.Errorf("slimproto/discovery: migrate cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Put records srv as the last server seen on network (an opaque caller
// key, e.g. an interface name or SSID), overwriting any prior entry for
// that network.
func (c *Cache) Put(network string, srv *Server) error {
	row := cachedServer{
		Network: network,
		IP:      srv.EndPoint.IP.String(),
		Port:    srv.EndPoint.Port,
		SeenAt:  time.Now(),
	}
	if name, ok := srv.TLV["NAME"].(TlvName); ok {
		row.Name = string(name)
	}
	if vers, ok := srv.TLV["VERS"].(TlvVersion); ok {
		row.Version = string(vers)
	}
	return c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "network"}},
		UpdateAll: true,
	}).Create(&row).Error
}

// Get returns the last server cached for network, or nil if none is
// recorded. The TLV map on the returned Server only carries NAME and
// VERS, since that's all the cache persists.
func (c *Cache) Get(network string) (*Server, error) {
	var row cachedServer
	err := c.db.First(&row, "network = ?", network).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	srv := &Server{
		EndPoint: session.EndPoint{IP: net.ParseIP(row.IP), Port: row.Port},
		TLV:      map[string]TlvValue{},
	}
	if row.Name != "" {
		srv.TLV["NAME"] = TlvName(row.Name)
	}
	if row.Version != "" {
		srv.TLV["VERS"] = TlvVersion(row.Version)
	}
	return srv, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
