package mysql

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

var selectSource = regexp.QuoteMeta("SELECT source_code FROM contract_sources WHERE network = ? AND LOWER(address) = ?")

func newMock(t *testing.T) (*SourceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSourceRepository(db), mock
}

func TestFetchSource_Found(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(selectSource).
		WithArgs("ethereum", "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae").
		WillReturnRows(sqlmock.NewRows([]string{"source_code"}).AddRow("contract Wallet {}"))

	src, err := repo.FetchSource(context.Background(), " 0xde0B295669a9FD93d5F28D9Ec85E40f4cb697BAe ", contracts.NetworkEthereum)
	require.NoError(t, err)
	assert.Equal(t, "contract Wallet {}", src)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchSource_NoRowIsAbsent(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(selectSource).WillReturnError(sql.ErrNoRows)

	src, err := repo.FetchSource(context.Background(), "0x1", contracts.NetworkBSC)
	require.NoError(t, err)
	assert.Empty(t, src)
}

func TestFetchSource_NullIsAbsent(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(selectSource).
		WillReturnRows(sqlmock.NewRows([]string{"source_code"}).AddRow(nil))

	src, err := repo.FetchSource(context.Background(), "0x1", contracts.NetworkBSC)
	require.NoError(t, err)
	assert.Empty(t, src)
}

func TestFetchSource_QueryError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(selectSource).WillReturnError(errors.New("connection reset"))

	_, err := repo.FetchSource(context.Background(), "0x1", contracts.NetworkBSC)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	assert.NoError(t, NewSourceRepository(db).Check(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
