package automation

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"

	"srg/config"
	"srg/model"
	"srg/period"
)

// Portal element ids. The ERP keeps these stable across companies; only
// the month link text in the date picker differs (MonthLinkFormat).
const (
	menuSales         = "#link_depth1_4"
	menuSalesEnquiry  = "#link_depth4_492"
	menuReceivables   = "#link_depth4_496"
	searchToggle      = "#search"
	searchSubmit      = "#header_search"
	excelExportButton = "div#footer_toolbar_toolbar_item_excel button"
	noDataMessageMark = "없습니다"
)

// Collector drives the ERP portal with a real browser. Credentials come
// in through the account list on each call and are never written
// anywhere by this package.
type Collector struct {
	cfg *config.Config
}

func NewCollector(cfg *config.Config) *Collector {
	return &Collector{cfg: cfg}
}

// Stats summarizes one collection run.
type Stats struct {
	Companies int
	Downloads int
	NoData    int
	Skipped   []string // companies that failed entirely
}

// CollectSales logs in once per account and downloads the sales enquiry
// export for each of the last `months` calendar months. A company that
// fails is skipped; the run fails only when every company does.
func (c *Collector) CollectSales(accounts []model.Account, months int) (*Stats, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts to collect with")
	}
	if months <= 0 {
		months = c.cfg.CollectionMonths
	}
	ranges := period.MonthRanges(time.Now(), months)

	stats := &Stats{Companies: len(accounts)}
	for _, acct := range accounts {
		if err := c.collectSalesFor(acct, ranges, stats); err != nil {
			log.Printf("ERROR: %s: sales collection failed: %v", acct.Company, err)
			stats.Skipped = append(stats.Skipped, acct.Company)
		}
	}
	if len(stats.Skipped) == len(accounts) {
		return stats, fmt.Errorf("sales collection failed for all %d companies", len(accounts))
	}
	return stats, nil
}

func (c *Collector) collectSalesFor(acct model.Account, ranges []period.MonthRange, stats *Stats) error {
	log.Printf("%s: starting sales collection (%d month(s))", acct.Company, len(ranges))

	browser, page, err := c.login(acct)
	if err != nil {
		return err
	}
	defer browser.MustClose()

	if err := c.openMenu(page, menuSalesEnquiry); err != nil {
		return fmt.Errorf("open sales enquiry: %w", err)
	}

	co, _ := c.cfg.CompanyByName(acct.Company)
	for _, r := range ranges {
		if err := c.setDateRange(page, co, r.First, r.Last); err != nil {
			log.Printf("ERROR: %s: date range %s: %v", acct.Company, r.First.Format("200601"), err)
			continue
		}
		name := fmt.Sprintf("%s_sales_%s_%s.xlsx",
			acct.Company, r.First.Format("20060102"), r.Last.Format("20060102"))
		dir := filepath.Join(c.cfg.Paths.SalesRawData, r.First.Format("2006"))
		saved, err := c.download(browser, page, dir, name)
		if err != nil {
			log.Printf("ERROR: %s: download %s: %v", acct.Company, name, err)
			continue
		}
		if saved == "" {
			log.Printf("%s: no data for %s", acct.Company, r.First.Format("2006-01"))
			stats.NoData++
			continue
		}
		log.Printf("%s: saved %s", acct.Company, saved)
		stats.Downloads++
	}
	return nil
}

// CollectReceivables downloads the accounts-receivable export, keyed to
// the most recent Friday, for every company flagged for it.
func (c *Collector) CollectReceivables(accounts []model.Account) (*Stats, error) {
	var targets []model.Account
	for _, acct := range accounts {
		if co, ok := c.cfg.CompanyByName(acct.Company); ok && co.CollectReceivables {
			targets = append(targets, acct)
		}
	}
	if len(targets) == 0 {
		return &Stats{}, nil
	}

	friday := period.PreviousFriday(time.Now())
	stats := &Stats{Companies: len(targets)}
	for _, acct := range targets {
		if err := c.collectReceivablesFor(acct, friday, stats); err != nil {
			log.Printf("ERROR: %s: receivables collection failed: %v", acct.Company, err)
			stats.Skipped = append(stats.Skipped, acct.Company)
		}
	}
	if len(stats.Skipped) == len(targets) {
		return stats, fmt.Errorf("receivables collection failed for all %d companies", len(targets))
	}
	return stats, nil
}

func (c *Collector) collectReceivablesFor(acct model.Account, friday time.Time, stats *Stats) error {
	log.Printf("%s: starting receivables collection (as of %s)", acct.Company, friday.Format("2006-01-02"))

	browser, page, err := c.login(acct)
	if err != nil {
		return err
	}
	defer browser.MustClose()

	if err := c.openMenu(page, menuReceivables); err != nil {
		return fmt.Errorf("open receivables enquiry: %w", err)
	}

	name := fmt.Sprintf("%s_receivables_%s.xlsx", acct.Company, friday.Format("20060102"))
	saved, err := c.download(browser, page, c.cfg.Paths.Receivables, name)
	if err != nil {
		return err
	}
	if saved == "" {
		stats.NoData++
		return nil
	}
	log.Printf("%s: saved %s", acct.Company, saved)
	stats.Downloads++
	return nil
}

// login launches a browser and authenticates against the portal.
func (c *Collector) login(acct model.Account) (*rod.Browser, *rod.Page, error) {
	u, err := launcher.New().
		Headless(c.cfg.Browser.Headless).
		Leakless(false).
		Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, nil, fmt.Errorf("connect to browser: %w", err)
	}

	ok := false
	defer func() {
		if !ok {
			browser.MustClose()
		}
	}()

	nav := time.Duration(c.cfg.Browser.NavTimeoutSec) * time.Second
	var page *rod.Page
	if err := rod.Try(func() {
		page = browser.MustPage(c.cfg.Browser.PortalURL)
		page.Timeout(nav).MustWaitStable()
	}); err != nil {
		return nil, nil, fmt.Errorf("open portal: %w", err)
	}

	if err := rod.Try(func() {
		page.MustElement("input[name='userid']").MustInput(acct.UserID)
		page.MustElement("input[name='password']").MustInput(acct.Password)
	}); err != nil {
		return nil, nil, fmt.Errorf("login form not found: %w", err)
	}
	if btn, err := page.ElementR("button, input, a", "로그인"); err == nil {
		btn.MustClick()
	} else {
		page.KeyActions().Press(input.Enter).MustDo()
	}

	// The top menu only renders for an authenticated session.
	if err := rod.Try(func() {
		page.Timeout(nav).MustWaitStable()
		page.Timeout(nav).MustElement(menuSales)
	}); err != nil {
		return nil, nil, fmt.Errorf("login rejected for %s: %w", acct.UserID, err)
	}

	ok = true
	return browser, page, nil
}

// openMenu walks the two-level ERP menu to the target enquiry page and
// makes sure the search panel is open.
func (c *Collector) openMenu(page *rod.Page, submenu string) error {
	if err := rod.Try(func() {
		page.MustElement(menuSales).MustClick()
		page.MustWaitStable()
		page.MustElement(submenu).MustClick()
		page.MustWaitStable()
	}); err != nil {
		return fmt.Errorf("menu %s: %w", submenu, err)
	}
	// The search panel toggles; open it if it is not visible yet.
	if panel, err := page.Element(".wrapper-header-search"); err != nil || !panelVisible(panel) {
		if err := rod.Try(func() {
			page.MustElement(searchToggle).MustClick()
			page.MustWaitStable()
		}); err != nil {
			return fmt.Errorf("open search panel: %w", err)
		}
	}
	return nil
}

func panelVisible(el *rod.Element) bool {
	if el == nil {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

// setDateRange fills the from/to pickers. Year and month are dropdown
// links; the day is a plain input. The month link text varies per
// company (e.g. "08" vs "8월"), configured as MonthLinkFormat.
func (c *Collector) setDateRange(page *rod.Page, co config.Company, first, last time.Time) error {
	return rod.Try(func() {
		yearBtns := page.MustElements("button[data-id='year']")
		monthBtns := page.MustElements("button[data-id='month']")
		dayInputs := page.MustElements("input#day")
		if len(yearBtns) < 2 || len(monthBtns) < 2 || len(dayInputs) < 2 {
			panic(fmt.Sprintf("date picker incomplete: %d year, %d month, %d day elements",
				len(yearBtns), len(monthBtns), len(dayInputs)))
		}

		for i, d := range []time.Time{first, last} {
			yearBtns[i].MustClick()
			page.MustElementR("a", fmt.Sprintf(`^%d$`, d.Year())).MustClick()

			monthBtns[i].MustClick()
			page.MustElementR("a", "^"+monthLink(co, d.Month())+"$").MustClick()

			dayInputs[i].MustSelectAllText().MustInput(fmt.Sprintf("%02d", d.Day()))
		}

		page.MustElement(searchSubmit).MustClick()
		page.MustWaitStable()
	})
}

// monthLink renders the month the way the company's portal skin shows
// it in the picker.
func monthLink(co config.Company, m time.Month) string {
	format := co.MonthLinkFormat
	if format == "" {
		format = "%02d"
	}
	return fmt.Sprintf(format, int(m))
}

// download clicks the Excel export and races the incoming download
// against a "no data" message on the page. Returns the saved path, or
// "" when the portal reported no data for the range.
func (c *Collector) download(browser *rod.Browser, page *rod.Page, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create save dir: %w", err)
	}

	wait := browser.MustWaitDownload()
	go page.MustHandleDialog()

	if err := rod.Try(func() {
		page.MustElement(excelExportButton).MustClick()
	}); err != nil {
		return "", fmt.Errorf("excel export button: %w", err)
	}

	var fileData []byte
	result := make(chan string, 2)

	go func() {
		defer func() { _ = recover() }()
		fileData = wait()
		result <- "downloaded"
	}()
	go func() {
		for i := 0; i < c.cfg.Browser.DownloadWaitSec*2; i++ {
			time.Sleep(500 * time.Millisecond)
			body, err := page.Element("body")
			if err != nil {
				continue
			}
			if text, err := body.Text(); err == nil && strings.Contains(text, noDataMessageMark) {
				result <- "no_data"
				return
			}
		}
	}()

	select {
	case r := <-result:
		if r == "no_data" {
			return "", nil
		}
	case <-time.After(time.Duration(c.cfg.Browser.DownloadWaitSec) * time.Second):
		return "", fmt.Errorf("timed out waiting for download")
	}

	if len(fileData) == 0 {
		return "", fmt.Errorf("downloaded file is empty")
	}

	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, fileData, 0644); err != nil {
		return "", fmt.Errorf("save download: %w", err)
	}
	return dest, nil
}
