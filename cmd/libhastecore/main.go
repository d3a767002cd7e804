// Command libhastecore exposes the clipboard engine through a C ABI so a
// host process in any language can drive it.
//
// Build command:
//
//	go build -buildmode=c-shared -o libhastecore.so ./cmd/libhastecore
//
// The stable contract lives in hastecore.h next to this file. Every
// pointer returned to the caller is allocated on the C heap and owned by
// the caller from the moment it is returned; each allocation has exactly
// one matching free function. Go memory never crosses the boundary.
package main

/*
#include <stdlib.h>
#include <stdint.h>
#include <stddef.h>

typedef struct {
	int64_t id;
	int32_t kind;
	char   *content_ref;
	char   *source_app;
	int64_t created_at;
	int32_t pinned;
	char   *tags_json;
} HasteItem;

typedef struct {
	HasteItem *items;
	size_t     count;
} HasteItemArray;
*/
import "C"

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"unsafe"

	"github.com/hasteapp/hastecore/internal/engine"
	"github.com/hasteapp/hastecore/pkg/types"
)

// Error codes shared with hastecore.h.
const (
	codeOK         = 0
	codeNotFound   = 1
	codeErrInvalid = -1
	codeErrStorage = -2
	codeErrCorrupt = -3
)

// Dedupe status codes shared with hastecore.h.
const (
	dedupeInserted = 0
	dedupeTouched  = 1
	dedupeRejected = 2
)

// handles maps capability tokens to open engines. Tokens start at 1;
// 0 is never a valid handle.
var (
	handlesMu  sync.Mutex
	handles    = make(map[int64]*engine.Engine)
	nextHandle int64 = 1
)

func lookupEngine(handle C.int64_t) (*engine.Engine, bool) {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	eng, ok := handles[int64(handle)]
	return eng, ok
}

// errCode maps an engine error onto the boundary's negative error range.
func errCode(err error) C.int32_t {
	switch {
	case errors.Is(err, types.ErrInvalidArgument):
		return codeErrInvalid
	case errors.Is(err, types.ErrCorruption):
		return codeErrCorrupt
	default:
		return codeErrStorage
	}
}

//export haste_open
func haste_open(dbPath, blobDir *C.char, indexFileNames C.int32_t) C.int64_t {
	if dbPath == nil || blobDir == nil {
		return 0
	}

	var opts []engine.Option
	if indexFileNames != 0 {
		opts = append(opts, engine.WithFileNameIndexing())
	}

	eng, err := engine.Open(C.GoString(dbPath), C.GoString(blobDir), opts...)
	if err != nil {
		return 0
	}

	handlesMu.Lock()
	defer handlesMu.Unlock()
	handle := nextHandle
	nextHandle++
	handles[handle] = eng
	return C.int64_t(handle)
}

//export haste_close
func haste_close(handle C.int64_t) C.int32_t {
	handlesMu.Lock()
	eng, ok := handles[int64(handle)]
	if ok {
		delete(handles, int64(handle))
	}
	handlesMu.Unlock()

	if !ok {
		return codeErrInvalid
	}
	if err := eng.Close(); err != nil {
		return codeErrStorage
	}
	return codeOK
}

//export haste_add_item
func haste_add_item(handle C.int64_t, kind C.int32_t, content, sourceApp *C.char, createdAt C.int64_t) C.int64_t {
	eng, ok := lookupEngine(handle)
	if !ok || content == nil {
		return codeErrInvalid
	}

	itemKind, err := types.KindFromCode(int32(kind))
	if err != nil {
		return codeErrInvalid
	}

	item := &types.NewItem{
		Kind:       itemKind,
		ContentRef: C.GoString(content),
		CreatedAt:  int64(createdAt),
	}
	if sourceApp != nil {
		item.SourceApp = C.GoString(sourceApp)
	}

	id, err := eng.AddItem(context.Background(), item)
	if err != nil {
		return C.int64_t(errCode(err))
	}
	return C.int64_t(id)
}

//export haste_dedupe_insert
func haste_dedupe_insert(handle C.int64_t, kind C.int32_t, content, sourceApp *C.char, createdAt C.int64_t, outID *C.int64_t) C.int32_t {
	eng, ok := lookupEngine(handle)
	if !ok || content == nil || outID == nil {
		return codeErrInvalid
	}

	itemKind, err := types.KindFromCode(int32(kind))
	if err != nil {
		return codeErrInvalid
	}

	item := &types.NewItem{
		Kind:       itemKind,
		ContentRef: C.GoString(content),
		CreatedAt:  int64(createdAt),
	}
	if sourceApp != nil {
		item.SourceApp = C.GoString(sourceApp)
	}

	outcome, err := eng.DedupeInsert(context.Background(), item)
	if err != nil {
		return errCode(err)
	}

	*outID = C.int64_t(outcome.ID)
	switch outcome.Status {
	case types.StatusInserted:
		return dedupeInserted
	case types.StatusTouched:
		return dedupeTouched
	default:
		return dedupeRejected
	}
}

//export haste_search
func haste_search(handle C.int64_t, query *C.char, limit C.uint32_t) *C.HasteItemArray {
	eng, ok := lookupEngine(handle)
	if !ok || query == nil {
		return nil
	}

	items, err := eng.Search(context.Background(), C.GoString(query), int(limit))
	if err != nil {
		return nil
	}
	return newItemArray(items)
}

//export haste_get_item
func haste_get_item(handle C.int64_t, id C.int64_t) *C.HasteItem {
	eng, ok := lookupEngine(handle)
	if !ok {
		return nil
	}

	item, err := eng.GetItem(context.Background(), int64(id))
	if err != nil {
		return nil
	}

	record := (*C.HasteItem)(C.malloc(C.size_t(unsafe.Sizeof(C.HasteItem{}))))
	fillItem(record, item)
	return record
}

//export haste_delete_item
func haste_delete_item(handle C.int64_t, id C.int64_t) C.int32_t {
	eng, ok := lookupEngine(handle)
	if !ok {
		return codeErrInvalid
	}

	err := eng.DeleteItem(context.Background(), int64(id))
	if errors.Is(err, types.ErrNotFound) {
		return codeNotFound
	}
	if err != nil {
		return errCode(err)
	}
	return codeOK
}

//export haste_pin_item
func haste_pin_item(handle C.int64_t, id C.int64_t, pinned C.int32_t) C.int32_t {
	eng, ok := lookupEngine(handle)
	if !ok {
		return codeErrInvalid
	}

	err := eng.PinItem(context.Background(), int64(id), pinned != 0)
	if errors.Is(err, types.ErrNotFound) {
		return codeNotFound
	}
	if err != nil {
		return errCode(err)
	}
	return codeOK
}

//export haste_item_free
func haste_item_free(item *C.HasteItem) {
	if item == nil {
		return
	}
	freeItemStrings(item)
	C.free(unsafe.Pointer(item))
}

//export haste_item_array_free
func haste_item_array_free(array *C.HasteItemArray) {
	if array == nil {
		return
	}
	if array.items != nil {
		records := unsafe.Slice(array.items, int(array.count))
		for i := range records {
			freeItemStrings(&records[i])
		}
		C.free(unsafe.Pointer(array.items))
	}
	C.free(unsafe.Pointer(array))
}

//export haste_string_free
func haste_string_free(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

// newItemArray copies items into one contiguous C allocation plus an
// array header, so the caller releases everything with a single call.
func newItemArray(items []*types.Item) *C.HasteItemArray {
	array := (*C.HasteItemArray)(C.malloc(C.size_t(unsafe.Sizeof(C.HasteItemArray{}))))
	array.count = C.size_t(len(items))
	array.items = nil

	if len(items) > 0 {
		block := C.malloc(C.size_t(len(items)) * C.size_t(unsafe.Sizeof(C.HasteItem{})))
		array.items = (*C.HasteItem)(block)
		records := unsafe.Slice(array.items, len(items))
		for i, item := range items {
			fillItem(&records[i], item)
		}
	}
	return array
}

// fillItem copies one item into a C record. All strings are C-heap copies.
func fillItem(record *C.HasteItem, item *types.Item) {
	record.id = C.int64_t(item.ID)
	record.kind = C.int32_t(item.Kind.Code())
	record.content_ref = C.CString(item.ContentRef)
	record.source_app = nil
	if item.SourceApp != "" {
		record.source_app = C.CString(item.SourceApp)
	}
	record.created_at = C.int64_t(item.CreatedAt)
	record.pinned = 0
	if item.Pinned {
		record.pinned = 1
	}

	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		tagsJSON = []byte("[]")
	}
	record.tags_json = C.CString(string(tagsJSON))
}

func freeItemStrings(item *C.HasteItem) {
	if item.content_ref != nil {
		C.free(unsafe.Pointer(item.content_ref))
	}
	if item.source_app != nil {
		C.free(unsafe.Pointer(item.source_app))
	}
	if item.tags_json != nil {
		C.free(unsafe.Pointer(item.tags_json))
	}
}

// main is required for -buildmode=c-shared; it never runs.
func main() {}
