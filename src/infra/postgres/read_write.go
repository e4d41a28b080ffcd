package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReadWriteClient separa o primário de uma réplica de leitura opcional.
// Sem réplica, os dois pools são o mesmo.
type ReadWriteClient struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewReadWriteClient(
	writeHost string,
	readHost string,
	port string,
	dbname string,
	username string,
	password string,
	maxConnections int,
) (*ReadWriteClient, error) {
	writePool, err := NewPostgresClient(writeHost, port, dbname, username, password, maxConnections)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}

	if readHost == "" || readHost == writeHost {
		return &ReadWriteClient{readPool: writePool, writePool: writePool}, nil
	}

	readPool, err := NewPostgresClient(readHost, port, dbname, username, password, maxConnections)
	if err != nil {
		writePool.Close()
		return nil, fmt.Errorf("replica: %w", err)
	}

	return &ReadWriteClient{
		readPool:  readPool,
		writePool: writePool,
	}, nil
}

func (rwc *ReadWriteClient) GetReadPool() *pgxpool.Pool {
	return rwc.readPool
}

func (rwc *ReadWriteClient) GetWritePool() *pgxpool.Pool {
	return rwc.writePool
}

func (rwc *ReadWriteClient) HasReplica() bool {
	return rwc.readPool != rwc.writePool
}

func (rwc *ReadWriteClient) Close() {
	if rwc.HasReplica() {
		rwc.readPool.Close()
	}
	rwc.writePool.Close()
}
