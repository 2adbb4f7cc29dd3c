package codebeamer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
	"github.com/doowon-lab/dwportal/pkg/service/codebeamer"
)

func testClient(t *testing.T, handler http.HandlerFunc) *codebeamer.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := gt.R1(codebeamer.New(srv.URL,
		codebeamer.WithPageDelay(0),
		codebeamer.WithRateLimitWait(0),
	)).NoError(t)
	return client
}

func itemPage(start, count int) string {
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf(`{"id":%d,"name":"item-%d","status":{"name":"열림"}}`, start+i, start+i))
	}
	return `{"items":[` + strings.Join(items, ",") + `]}`
}

func TestVerifySendsBasicCredential(t *testing.T) {
	var gotAuth string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})

	cred := auth.Credential("dXNlcjpwYXNz")
	gt.NoError(t, client.Verify(context.Background(), cred))
	gt.Value(t, gotAuth).Equal("Basic dXNlcjpwYXNz")
}

func TestVerifyRejectedCredential(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	err := client.Verify(context.Background(), auth.Credential("bad"))
	gt.Error(t, err)
	gt.Number(t, codebeamer.StatusOf(err)).Equal(http.StatusUnauthorized)
	gt.Bool(t, codebeamer.IsTransient(err)).False()
}

func TestListItemsAggregatesPages(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(itemPage(1, 25)))
		case "2":
			w.Write([]byte(itemPage(26, 7)))
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
			w.Write([]byte(`{"items":[]}`))
		}
	})

	records := gt.R1(client.ListItems(context.Background(), "cred", 123)).NoError(t)
	gt.Array(t, records).Length(32)
	gt.Value(t, records[0].ID).Equal(int64(1))
	gt.Value(t, records[0].Status).Equal("열림")
	gt.Value(t, records[31].ID).Equal(int64(32))
}

func TestListItemsMaxItemsCap(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(itemPage(1, 25)))
	})

	records := gt.R1(client.ListItems(context.Background(), "cred", 123,
		interfaces.WithMaxItems(10))).NoError(t)
	gt.Array(t, records).Length(10)
}

func TestListItemsRetriesAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(itemPage(1, 3)))
	})

	records := gt.R1(client.ListItems(context.Background(), "cred", 123)).NoError(t)
	gt.Array(t, records).Length(3)
	gt.Number(t, int(calls.Load())).Equal(2)
}

func TestListItemsToleratesBareArrayShape(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":9,"name":"solo"}]`))
	})

	records := gt.R1(client.ListItems(context.Background(), "cred", 1)).NoError(t)
	gt.Array(t, records).Length(1)
	gt.Value(t, records[0].Name).Equal("solo")
}

func TestListItemsIncludeFields(t *testing.T) {
	var gotInclude string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotInclude = r.URL.Query().Get("includeFields")
		w.Write([]byte(`{"items":[]}`))
	})

	gt.R1(client.ListItems(context.Background(), "cred", 1,
		interfaces.WithIncludeFields(true))).NoError(t)
	gt.Value(t, gotInclude).Equal("true")
}

func TestCreateItemPostsOutboundRecord(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data := gt.R1(io.ReadAll(r.Body)).NoError(t)
		gt.NoError(t, json.Unmarshal(data, &gotBody))
		w.Write([]byte(`{"id":777,"name":"새 보고서"}`))
	})

	rec := &model.OutboundRecord{
		Name: "새 보고서",
		CustomFields: []model.CustomFieldEntry{
			{FieldID: 1001, Type: "TextFieldValue", Value: "내용"},
		},
	}
	created := gt.R1(client.CreateItem(context.Background(), "cred", 55, rec)).NoError(t)
	gt.Value(t, created.ID).Equal(int64(777))
	gt.Value(t, gotPath).Equal("/api/v3/trackers/55/items")
	gt.Value(t, gotBody["name"]).Equal("새 보고서")
}

func TestUpdateItemFieldsWrapsInFieldValues(t *testing.T) {
	var gotBody map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPut)
		data := gt.R1(io.ReadAll(r.Body)).NoError(t)
		gt.NoError(t, json.Unmarshal(data, &gotBody))
		w.Write([]byte(`{}`))
	})

	fields := []model.CustomFieldEntry{
		{FieldID: 1002, Type: "IntegerFieldValue", Value: 42},
	}
	gt.NoError(t, client.UpdateItemFields(context.Background(), "cred", 777, fields))

	values := gt.Cast[[]any](t, gotBody["fieldValues"])
	gt.Array(t, values).Length(1)
}

func TestDeleteItem(t *testing.T) {
	var gotMethod, gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	})

	gt.NoError(t, client.DeleteItem(context.Background(), "cred", 321))
	gt.Value(t, gotMethod).Equal(http.MethodDelete)
	gt.Value(t, gotPath).Equal("/api/v3/items/321")
}

func TestUploadAttachmentsPartialFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, r.ParseMultipartForm(1 << 20))
		headers := r.MultipartForm.File["attachments"]
		if len(headers) > 0 && headers[0].Filename == "bad.pdf" {
			http.Error(w, "too large", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{}`))
	})

	files := []model.Attachment{
		{FileName: "good.pdf", Content: []byte("pdf")},
		{FileName: "bad.pdf", Content: []byte("pdf")},
	}
	results := gt.R1(client.UploadAttachments(context.Background(), "cred", 777, files)).NoError(t)
	gt.Array(t, results).Length(2)
	gt.Bool(t, results[0].Success).True()
	gt.Bool(t, results[1].Success).False()
	gt.String(t, results[1].Error).NotEqual("")
}

func TestPingUnavailable(t *testing.T) {
	client := gt.R1(codebeamer.New("http://127.0.0.1:1")).NoError(t)

	err := client.Ping(context.Background())
	gt.Error(t, err)
	gt.Bool(t, codebeamer.IsTransient(err)).True()
}

func TestIsTransientOnServerError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := client.Ping(context.Background())
	gt.Error(t, err)
	gt.Bool(t, codebeamer.IsTransient(err)).True()
}
