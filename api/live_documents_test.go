package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proseplay/proseplay/session"
	mockst "github.com/proseplay/proseplay/session/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"
)

func TestLiveDocuments_PutKeepsFirst(t *testing.T) {
	service := newTestService(t, nil)
	first := service.openDocument("(a|b)", "")
	second := service.openDocument("(a|b)", "")
	id := first.session.ID

	require.Same(t, first, service.docs.put(id, first, time.Now().Add(time.Minute)))
	require.Same(t, first, service.docs.put(id, second, time.Now().Add(time.Minute)))
	require.Same(t, first, service.docs.get(id, time.Now()))
}

func TestLiveDocuments_PutReplacesExpired(t *testing.T) {
	service := newTestService(t, nil)
	first := service.openDocument("(a|b)", "")
	second := service.openDocument("(a|b)", "")
	id := first.session.ID

	service.docs.put(id, first, time.Now().Add(-time.Second))

	require.Same(t, second, service.docs.put(id, second, time.Now().Add(time.Minute)))
	require.Same(t, second, service.docs.get(id, time.Now()))
}

func TestLiveDocuments_Touch(t *testing.T) {
	service := newTestService(t, nil)
	live := service.openDocument("(a|b)", "")
	id := live.session.ID

	now := time.Now()
	service.docs.put(id, live, now.Add(time.Second))

	service.docs.touch(live, now.Add(time.Hour))
	require.NotNil(t, service.docs.get(id, now.Add(time.Minute)))

	// expiry never moves back
	service.docs.touch(live, now.Add(time.Second))
	require.NotNil(t, service.docs.get(id, now.Add(time.Minute)))
}

func TestSaveDocument_ExtendsExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mockst.NewMockStore(ctrl)

	store.EXPECT().SaveSession(gomock.Any(), gomock.Any(), testConfig.SessionTTL).Times(1).Return(nil)

	service := newTestService(t, store)
	live := service.openDocument("(a|b)", "")
	id := live.session.ID
	service.docs.put(id, live, time.Now().Add(time.Second))

	live.mu.Lock()
	require.NoError(t, service.saveDocument(context.Background(), live))
	live.mu.Unlock()

	require.Same(t, live, service.docs.get(id, time.Now().Add(testConfig.SessionTTL/2)))
}

func TestLookupDocument_ConcurrentRehydration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mockst.NewMockStore(ctrl)

	id := uuid.NewString()
	stored := session.PlaySession{
		ID:             id,
		Source:         "(a|b)[1] (c|d)[1]",
		CurrentIndexes: []int{1, 1},
		ExpiresAt:      time.Now().Add(time.Minute),
	}

	// both lookups miss the memory before either of them keeps its document
	var arrived sync.WaitGroup
	arrived.Add(2)
	release := make(chan struct{})

	store.EXPECT().
		GetSession(gomock.Any(), id).
		Times(2).
		DoAndReturn(func(ctx context.Context, id string) (*session.PlaySession, error) {
			arrived.Done()
			<-release

			s := stored
			return &s, nil
		})

	service := newTestService(t, store)

	found := make([]*liveDocument, 2)
	var g errgroup.Group
	for i := range found {
		g.Go(func() error {
			live, err := service.lookupDocument(context.Background(), id)
			found[i] = live
			return err
		})
	}

	arrived.Wait()
	close(release)
	require.NoError(t, g.Wait())

	require.NotNil(t, found[0])
	require.Same(t, found[0], found[1])
	require.Same(t, found[0], service.docs.get(id, time.Now()))
}

func TestSlideWindow_Concurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mockst.NewMockStore(ctrl)

	store.EXPECT().SaveSession(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().Return(nil)

	service := newTestService(t, store)
	live := putTestDocument(t, service, "(a|b|c)[1] (d|e|f)[1]")
	docURL := DocumentsURL + "/" + live.session.ID

	const n = 16
	bodies := make([][]byte, n)
	for i := range bodies {
		data, err := json.Marshal(SlideRequest{Window: intPtr(i % 2), Choice: intPtr(i % 3)})
		require.NoError(t, err)
		bodies[i] = data
	}

	serve := func(method, url string, body []byte, want int) error {
		request, err := http.NewRequest(method, url, bytes.NewReader(body))
		if err != nil {
			return err
		}

		recorder := httptest.NewRecorder()
		service.router.ServeHTTP(recorder, request)
		if recorder.Code != want {
			return fmt.Errorf("%s %s: status %d: %s", method, url, recorder.Code, recorder.Body.String())
		}
		return nil
	}

	var g errgroup.Group
	for i := range bodies {
		g.Go(func() error {
			return serve(http.MethodPost, docURL+"/slide", bodies[i], http.StatusOK)
		})
		g.Go(func() error {
			return serve(http.MethodGet, docURL, nil, http.StatusOK)
		})
	}
	require.NoError(t, g.Wait())

	live.mu.Lock()
	defer live.mu.Unlock()

	indexes := live.doc.CurrentIndexes()
	require.Len(t, indexes, 2)
	require.Equal(t, indexes[0], indexes[1])
	require.Same(t, live, service.docs.get(live.session.ID, time.Now()))
}
