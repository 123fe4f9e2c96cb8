package ratings

import (
	"strings"

	"github.com/pfrederiksen/agedcare-docs/internal/dataset"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
	"github.com/pfrederiksen/agedcare-docs/internal/matcher"
	"github.com/pfrederiksen/agedcare-docs/internal/provider"
)

// ResidentialCareType selects services whose care type contains it, ignoring case.
const ResidentialCareType = "residential"

// Columns are the rating values appended to each service row.
var Columns = []string{
	"Overall Star Rating",
	"Residents' Experience rating",
	"Compliance rating",
	"Staffing rating",
	"Quality Measures rating",
}

// Result is the merged table plus match statistics.
type Result struct {
	Header  []string
	Rows    [][]string
	Matched int
	// Incomplete counts services missing a key field. They are still matched.
	Incomplete int
}

// Merge matches each residential service against ratings and appends the rating columns
// to the service's original columns. Unmatched services get blank rating cells.
func Merge(list *dataset.ServiceList, ratings []provider.Rating, threshold float64, log *logger.Logger) Result {
	if log == nil {
		log = logger.Default()
	}
	if threshold <= 0 {
		threshold = matcher.DefaultThreshold
	}

	index := matcher.NewIndex(ratings, provider.Rating.Key)
	services := dataset.FilterCareTypeContains(list.Services, ResidentialCareType)

	header := append(append([]string(nil), list.Header...), Columns...)
	res := Result{Header: header}

	for _, svc := range services {
		row := make([]string, 0, len(header))
		for _, h := range list.Header {
			row = append(row, svc.Row[h])
		}

		key := svc.Key()
		if !svc.Complete() {
			res.Incomplete++
			logger.IncrCounter("ratings.incomplete")
			log.Debug("service key incomplete", logger.Fields{"service": key})
		}

		rating, m, ok := index.Lookup(key, threshold)
		if ok {
			res.Matched++
			logger.IncrCounter("ratings.matched")
			log.Debug("rating matched", logger.Fields{"service": key, "rating": m.Key, "score": m.Score})
		} else {
			logger.IncrCounter("ratings.unmatched")
			log.Debug("no rating match", logger.Fields{"service": key})
		}

		for _, col := range Columns {
			value := ""
			if ok {
				value = strings.TrimSpace(rating.Values[col])
			}
			row = append(row, value)
		}
		res.Rows = append(res.Rows, row)
	}

	if len(services) > 0 {
		logger.SetGauge("ratings.match_rate", 100*float64(res.Matched)/float64(len(services)))
	}

	log.Info("ratings merged", logger.Fields{
		"services":   len(services),
		"ratings":    index.Len(),
		"matched":    res.Matched,
		"incomplete": res.Incomplete,
	})
	return res
}
