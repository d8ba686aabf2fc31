package security

import "github.com/etnz/holdings/logging"

// builtinSource names the built-in table in the database sources.
const builtinSource = "builtin"

// builtin is a small table of widely held securities, enough to resolve the
// common names found in private banking statements without any external file.
var builtin = []Entry{
	{ISIN: "US0378331005", Name: "Apple Inc.", Ticker: "AAPL", Sector: "Technology", Industry: "Consumer Electronics", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNAS", CUSIP: "037833100"},
	{ISIN: "US5949181045", Name: "Microsoft Corporation", Ticker: "MSFT", Sector: "Technology", Industry: "Software", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNAS", CUSIP: "594918104"},
	{ISIN: "US02079K3059", Name: "Alphabet Inc. Class A", Ticker: "GOOGL", Sector: "Communication Services", Industry: "Internet Content & Information", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNAS"},
	{ISIN: "US0231351067", Name: "Amazon.com Inc.", Ticker: "AMZN", Sector: "Consumer Cyclical", Industry: "Internet Retail", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNAS"},
	{ISIN: "US67066G1040", Name: "NVIDIA Corporation", Ticker: "NVDA", Sector: "Technology", Industry: "Semiconductors", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNAS"},
	{ISIN: "US88160R1014", Name: "Tesla Inc.", Ticker: "TSLA", Sector: "Consumer Cyclical", Industry: "Auto Manufacturers", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNAS"},
	{ISIN: "US30303M1027", Name: "Meta Platforms Inc.", Ticker: "META", Sector: "Communication Services", Industry: "Internet Content & Information", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNAS"},
	{ISIN: "US4592001014", Name: "International Business Machines Corporation", Ticker: "IBM", Sector: "Technology", Industry: "IT Services", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US46625H1005", Name: "JPMorgan Chase & Co.", Ticker: "JPM", Sector: "Financial Services", Industry: "Banks", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US0605051046", Name: "Bank of America Corporation", Ticker: "BAC", Sector: "Financial Services", Industry: "Banks", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US38141G1040", Name: "The Goldman Sachs Group Inc.", Ticker: "GS", Sector: "Financial Services", Industry: "Capital Markets", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US9311421039", Name: "Walmart Inc.", Ticker: "WMT", Sector: "Consumer Defensive", Industry: "Discount Stores", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US4781601046", Name: "Johnson & Johnson", Ticker: "JNJ", Sector: "Healthcare", Industry: "Drug Manufacturers", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US7427181091", Name: "The Procter & Gamble Company", Ticker: "PG", Sector: "Consumer Defensive", Industry: "Household & Personal Products", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US1912161007", Name: "The Coca-Cola Company", Ticker: "KO", Sector: "Consumer Defensive", Industry: "Beverages", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US7170811035", Name: "Pfizer Inc.", Ticker: "PFE", Sector: "Healthcare", Industry: "Drug Manufacturers", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US92826C8394", Name: "Visa Inc. Class A", Ticker: "V", Sector: "Financial Services", Industry: "Credit Services", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US57636Q1040", Name: "Mastercard Incorporated Class A", Ticker: "MA", Sector: "Financial Services", Industry: "Credit Services", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US17275R1023", Name: "Cisco Systems Inc.", Ticker: "CSCO", Sector: "Technology", Industry: "Communication Equipment", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNAS"},
	{ISIN: "US4370761029", Name: "The Home Depot Inc.", Ticker: "HD", Sector: "Consumer Cyclical", Industry: "Home Improvement Retail", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "US2546871060", Name: "The Walt Disney Company", Ticker: "DIS", Sector: "Communication Services", Industry: "Entertainment", SecurityType: "equity", Country: "US", Currency: "USD", Exchange: "XNYS"},
	{ISIN: "CH0038863350", Name: "Nestlé S.A.", Ticker: "NESN", Sector: "Consumer Defensive", Industry: "Packaged Foods", SecurityType: "equity", Country: "CH", Currency: "CHF", Exchange: "XSWX"},
	{ISIN: "CH0012032048", Name: "Roche Holding AG", Ticker: "ROG", Sector: "Healthcare", Industry: "Drug Manufacturers", SecurityType: "equity", Country: "CH", Currency: "CHF", Exchange: "XSWX"},
	{ISIN: "CH0012005267", Name: "Novartis AG", Ticker: "NOVN", Sector: "Healthcare", Industry: "Drug Manufacturers", SecurityType: "equity", Country: "CH", Currency: "CHF", Exchange: "XSWX"},
	{ISIN: "CH0244767585", Name: "UBS Group AG", Ticker: "UBSG", Sector: "Financial Services", Industry: "Banks", SecurityType: "equity", Country: "CH", Currency: "CHF", Exchange: "XSWX"},
	{ISIN: "CH0012221716", Name: "ABB Ltd", Ticker: "ABBN", Sector: "Industrials", Industry: "Electrical Equipment", SecurityType: "equity", Country: "CH", Currency: "CHF", Exchange: "XSWX"},
	{ISIN: "CH0210483332", Name: "Compagnie Financière Richemont SA", Ticker: "CFR", Sector: "Consumer Cyclical", Industry: "Luxury Goods", SecurityType: "equity", Country: "CH", Currency: "CHF", Exchange: "XSWX"},
	{ISIN: "CH0012138530", Name: "Credit Suisse Group AG", Ticker: "CSGN", Sector: "Financial Services", Industry: "Banks", SecurityType: "equity", Country: "CH", Currency: "CHF", Exchange: "XSWX"},
	{ISIN: "DE0007164600", Name: "SAP SE", Ticker: "SAP", Sector: "Technology", Industry: "Software", SecurityType: "equity", Country: "DE", Currency: "EUR", Exchange: "XETR"},
	{ISIN: "DE0007236101", Name: "Siemens AG", Ticker: "SIE", Sector: "Industrials", Industry: "Conglomerates", SecurityType: "equity", Country: "DE", Currency: "EUR", Exchange: "XETR"},
	{ISIN: "DE0008404005", Name: "Allianz SE", Ticker: "ALV", Sector: "Financial Services", Industry: "Insurance", SecurityType: "equity", Country: "DE", Currency: "EUR", Exchange: "XETR"},
	{ISIN: "DE0005140008", Name: "Deutsche Bank AG", Ticker: "DBK", Sector: "Financial Services", Industry: "Banks", SecurityType: "equity", Country: "DE", Currency: "EUR", Exchange: "XETR"},
	{ISIN: "FR0000120271", Name: "TotalEnergies SE", Ticker: "TTE", Sector: "Energy", Industry: "Oil & Gas Integrated", SecurityType: "equity", Country: "FR", Currency: "EUR", Exchange: "XPAR"},
	{ISIN: "FR0000121014", Name: "LVMH Moët Hennessy Louis Vuitton SE", Ticker: "MC", Sector: "Consumer Cyclical", Industry: "Luxury Goods", SecurityType: "equity", Country: "FR", Currency: "EUR", Exchange: "XPAR"},
	{ISIN: "NL0010273215", Name: "ASML Holding N.V.", Ticker: "ASML", Sector: "Technology", Industry: "Semiconductor Equipment", SecurityType: "equity", Country: "NL", Currency: "EUR", Exchange: "XAMS"},
	{ISIN: "GB0002875804", Name: "British American Tobacco p.l.c.", Ticker: "BATS", Sector: "Consumer Defensive", Industry: "Tobacco", SecurityType: "equity", Country: "GB", Currency: "GBP", Exchange: "XLON", SEDOL: "0287580"},
	{ISIN: "GB0005405286", Name: "HSBC Holdings plc", Ticker: "HSBA", Sector: "Financial Services", Industry: "Banks", SecurityType: "equity", Country: "GB", Currency: "GBP", Exchange: "XLON", SEDOL: "0540528"},
	{ISIN: "GB0007980591", Name: "BP p.l.c.", Ticker: "BP", Sector: "Energy", Industry: "Oil & Gas Integrated", SecurityType: "equity", Country: "GB", Currency: "GBP", Exchange: "XLON", SEDOL: "0798059"},
	{ISIN: "JP3633400001", Name: "Toyota Motor Corporation", Ticker: "7203", Sector: "Consumer Cyclical", Industry: "Auto Manufacturers", SecurityType: "equity", Country: "JP", Currency: "JPY", Exchange: "XTKS"},
	{ISIN: "IE00B4L5Y983", Name: "iShares Core MSCI World UCITS ETF", Ticker: "IWDA", Sector: "Diversified", Industry: "Global Equity", SecurityType: "etf", Country: "IE", Currency: "USD", Exchange: "XAMS"},
	{ISIN: "IE00B5BMR087", Name: "iShares Core S&P 500 UCITS ETF", Ticker: "CSPX", Sector: "Diversified", Industry: "US Equity", SecurityType: "etf", Country: "IE", Currency: "USD", Exchange: "XLON"},
	{ISIN: "US912810TM09", Name: "United States Treasury Bond 4% 15.11.2052", Sector: "Government", Industry: "Sovereign", SecurityType: "bond", Country: "US", Currency: "USD"},
}

// NewBuiltin returns a database initialised with the built-in table.
func NewBuiltin() *DB {
	db := New()
	for _, e := range builtin {
		if err := db.Add(e); err != nil {
			// The table is static, this is a programming error.
			logging.Logger().WithError(err).Error("invalid-builtin-entry")
		}
	}
	db.sources = append(db.sources, builtinSource)
	return db
}
