// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"moonui/internal/storage"
	"moonui/internal/store"
)

// maxUploadSize is the largest accepted asset file (100 MB).
const maxUploadSize = 100 << 20

// AssetUpload stores an item's downloadable file (target=file, private
// bucket) or its preview image (target=preview, public bucket) and records
// the location on the item. A replaced object is removed afterwards.
func (a *Admin) AssetUpload(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if a.files == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	existing, err := a.assets.FindByID(ctx, kind, id)
	if err != nil {
		serverError(w, "find asset failed", err, "kind", kind.Name, "id", id)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large (max 100 MB)")
		return
	}
	defer r.MultipartForm.RemoveAll()

	public := false
	switch r.FormValue("target") {
	case "", "file":
	case "preview":
		public = true
	default:
		writeError(w, http.StatusBadRequest, "target must be file or preview")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		serverError(w, "read upload failed", err)
		return
	}
	contentType := http.DetectContentType(data)
	if public && !isImage(contentType) {
		writeError(w, http.StatusBadRequest, "preview must be an image")
		return
	}

	key := storage.ObjectKey(kind.Name, id, header.Filename)
	if err := a.files.Upload(ctx, public, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		serverError(w, "s3 upload failed", err, "key", key)
		return
	}

	var oldKey string
	if public {
		oldKey, _ = a.files.ExtractKey(existing.PreviewURL)
		existing.PreviewURL = a.files.FileURL(key)
	} else {
		oldKey = existing.AssetKey
		existing.AssetKey = key
	}

	if err := a.assets.Update(ctx, kind, existing); err != nil {
		serverError(w, "update asset failed", err, "kind", kind.Name, "id", id)
		return
	}
	if oldKey != "" && oldKey != key {
		if err := a.files.Delete(ctx, public, oldKey); err != nil {
			slog.Warn("delete replaced object failed", "key", oldKey, "error", err)
		}
	}

	slog.Info("asset file uploaded",
		"kind", kind.Name,
		"id", id,
		"key", key,
		"size", len(data),
		"public", public,
	)
	a.invalidate(ctx, kind, "asset", id, "upload")
	writeJSON(w, http.StatusOK, existing)
}

func isImage(contentType string) bool {
	switch contentType {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
		return true
	}
	return false
}

// CacheLog returns the most recent cache invalidations.
func (a *Admin) CacheLog(w http.ResponseWriter, r *http.Request) {
	if a.cacheLog == nil {
		writeJSON(w, http.StatusOK, []store.CacheLogEntry{})
		return
	}
	entries, err := a.cacheLog.RecentEntries(r.Context(), 50)
	if err != nil {
		serverError(w, "list cache log failed", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
