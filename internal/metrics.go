package internal

import "expvar"

var (
	requestsTotal = expvar.NewMap("gitping_requests_total")
	parseErrors   = expvar.NewMap("gitping_parse_errors_total")
	ignoredTotal  = expvar.NewMap("gitping_ignored_total")
	storedTotal   = expvar.NewMap("gitping_stored_total")
	storeErrors   = expvar.NewMap("gitping_store_errors_total")
	publishErrors = expvar.NewMap("gitping_publish_errors_total")
)

func IncRequest(provider string) {
	requestsTotal.Add(provider, 1)
}

func IncParseError(provider string) {
	parseErrors.Add(provider, 1)
}

func IncIgnored(event string) {
	ignoredTotal.Add(event, 1)
}

func IncStored(action string) {
	storedTotal.Add(action, 1)
}

func IncStoreError(op string) {
	storeErrors.Add(op, 1)
}

func IncPublishError(driver string) {
	publishErrors.Add(driver, 1)
}
