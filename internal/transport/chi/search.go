package chi

import "net/http"

// TextSearch handles GET /sightings/search/text.
func (s *Server) TextSearch(w http.ResponseWriter, r *http.Request) {
	p, err := bindTextSearch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	page, size := p.resolve(defaultSearchSize)

	res, err := s.search.TextSearch(r.Context(), deref(p.Text), page, size)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchToResponse(res, true))
}

// AdvancedSearch handles GET /sightings/search/advanced.
func (s *Server) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	p, err := bindAdvancedSearch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	page, size := p.resolve(defaultSearchSize)

	res, err := s.search.AdvancedSearch(r.Context(), deref(p.State), p.ObjectType, p.MinReliability, page, size)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchToResponse(res, false))
}

// NearbySearch handles GET /sightings/search/nearby.
func (s *Server) NearbySearch(w http.ResponseWriter, r *http.Request) {
	p, err := bindNearbySearch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	size := defaultSearchSize
	if p.Size != nil {
		size = *p.Size
	}

	res, err := s.search.NearbySearch(r.Context(), p.Lat, p.Lon, deref(p.RadiusKm), size)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchToResponse(res, false))
}

// ObjectTypeDistribution handles GET /sightings/search/stats/object-types.
func (s *Server) ObjectTypeDistribution(w http.ResponseWriter, r *http.Request) {
	counts, err := s.search.CategoryDistribution(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countsToResponse(counts))
}

// StateCounts handles GET /sightings/search/stats/states.
func (s *Server) StateCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.search.StateCounts(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countsToResponse(counts))
}

// ReliabilityStatistics handles GET /sightings/search/stats/reliability.
func (s *Server) ReliabilityStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.search.ReliabilityStatistics(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReliabilityStatsResponse{
		Mean:                 st.Mean,
		StdDev:               st.StdDev,
		HighReliabilityCount: st.HighReliabilityCount,
	})
}

// MeanReliability handles GET /sightings/search/stats/reliability/mean.
func (s *Server) MeanReliability(w http.ResponseWriter, r *http.Request) {
	mean, err := s.search.MeanReliability(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MeanResponse{Mean: mean})
}

// HourlyTimeline handles GET /sightings/search/stats/timeline.
func (s *Server) HourlyTimeline(w http.ResponseWriter, r *http.Request) {
	points, err := s.search.HourlyTimeline(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timelineToResponse(points))
}

// WeeklyTop handles GET /sightings/search/weekly/top.
func (s *Server) WeeklyTop(w http.ResponseWriter, r *http.Request) {
	p, err := bindWeekly(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	top, err := s.search.WeeklyTop(r.Context(), deref(p.Date))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weeklyTopToResponse(top))
}

// WeeklyRanking handles GET /sightings/search/weekly/ranking.
func (s *Server) WeeklyRanking(w http.ResponseWriter, r *http.Request) {
	p, err := bindWeekly(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	rank, err := s.search.WeeklyRanking(r.Context(), deref(p.Date))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankingToResponse(rank))
}
