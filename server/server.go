// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the coordinate converter over a local HTTP API.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/coordconv/coord"
	"github.com/jcodagnone/coordconv/table"
)

// DefaultAddr only listens on the loopback interface.
const DefaultAddr = "localhost:8080"

type Server struct {
	maxProcs int
}

func NewServer(maxProcs int) *Server {
	return &Server{maxProcs: maxProcs}
}

// Register installs the API routes on r.
func (s *Server) Register(r gin.IRoutes) {
	r.GET("/api/formats", s.listFormats)
	r.GET("/api/parse", s.parseToken)
	r.POST("/api/columns", s.detectColumns)
	r.POST("/api/convert", s.convertTable)
}

func (s *Server) Run(addr string) error {
	r := gin.Default()
	s.Register(r)

	return r.Run(addr)
}

func (s *Server) listFormats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, coord.Notations())
}

type parseResponse struct {
	Token  string       `json:"token"`
	Format coord.Format `json:"format"`
	Value  coord.Value  `json:"value"`
	OK     bool         `json:"ok"`
}

func (s *Server) parseToken(ctx *gin.Context) {
	token, ok := ctx.GetQuery("token")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "token query parameter is required"})

		return
	}

	v, format := coord.Parse(token)
	ctx.JSON(http.StatusOK, parseResponse{
		Token:  token,
		Format: format,
		Value:  v,
		OK:     !v.IsMissing(),
	})
}

type columnsRequest struct {
	Columns []string `json:"columns"`
}

func (s *Server) detectColumns(ctx *gin.Context) {
	var req columnsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, table.DetectColumns(req.Columns))
}

type convertRequest struct {
	Columns      []string `json:"columns" binding:"required"`
	Rows         [][]any  `json:"rows"`
	Longitude    string   `json:"longitude"`
	Latitude     string   `json:"latitude"`
	H3Resolution int      `json:"h3_resolution"`
}

type convertResponse struct {
	Columns   []string        `json:"columns"`
	Rows      [][]any         `json:"rows"`
	Selection table.Selection `json:"selection"`
	Metrics   *table.Metrics  `json:"metrics"`
}

func (s *Server) convertTable(ctx *gin.Context) {
	var req convertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	sel := table.DetectColumns(req.Columns).Merge(table.Selection{
		Longitude: req.Longitude,
		Latitude:  req.Latitude,
	})

	src := &table.Table{Columns: req.Columns, Rows: req.Rows}

	out, metrics, err := table.Convert(src, table.Options{
		LongitudeColumn: sel.Longitude,
		LatitudeColumn:  sel.Latitude,
		MaxProcs:        s.maxProcs,
		H3Resolution:    req.H3Resolution,
	})
	if err != nil {
		if table.IsColumnNotFound(err) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "columns": req.Columns})

			return
		}

		var convErr *table.ConversionError
		if errors.As(err, &convErr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, convertResponse{
		Columns:   out.Columns,
		Rows:      out.Rows,
		Selection: sel,
		Metrics:   metrics,
	})
}
