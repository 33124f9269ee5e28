package automation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srg/config"
	"srg/model"
)

func TestMonthLinkFormats(t *testing.T) {
	assert.Equal(t, "08", monthLink(config.Company{MonthLinkFormat: "%02d"}, time.August))
	assert.Equal(t, "8월", monthLink(config.Company{MonthLinkFormat: "%d월"}, time.August))
	assert.Equal(t, "12", monthLink(config.Company{}, time.December))
}

func TestCollectSalesNoAccounts(t *testing.T) {
	cfg := config.Default()
	_, err := NewCollector(&cfg).CollectSales(nil, 3)
	require.Error(t, err)
}

func TestCollectReceivablesSkipsUnflaggedCompanies(t *testing.T) {
	cfg := config.Default()
	c := NewCollector(&cfg)

	// FLK is not flagged for receivables; nothing to do, no browser.
	stats, err := c.CollectReceivables([]model.Account{
		{Company: "FLK", UserID: "u", Password: "p"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Companies)
	assert.Equal(t, 0, stats.Downloads)
}
