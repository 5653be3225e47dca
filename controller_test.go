/*
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package finsy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewControllerRejectsDuplicateNames(t *testing.T) {
	sw1 := NewSwitch("sw1", "a:1", NewSwitchOptions())
	sw2 := NewSwitch("sw1", "b:2", NewSwitchOptions())

	_, err := NewController("c", sw1, sw2)
	assert.Error(t, err)
}

func TestControllerGetAndLen(t *testing.T) {
	sw1 := NewSwitch("sw1", "a:1", NewSwitchOptions())
	sw2 := NewSwitch("sw2", "b:2", NewSwitchOptions())

	c, err := NewController("c", sw1, sw2)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, sw1, c.Get("sw1"))
	assert.Nil(t, c.Get("missing"))
	assert.Len(t, c.All(), 2)
}

func TestControllerAddRejectsDuplicate(t *testing.T) {
	sw1 := NewSwitch("sw1", "a:1", NewSwitchOptions())
	c, err := NewController("c", sw1)
	require.NoError(t, err)

	err = c.Add(context.Background(), NewSwitch("sw1", "b:2", NewSwitchOptions()))
	assert.Error(t, err)
}

func TestControllerRemoveUnknownSwitch(t *testing.T) {
	c, err := NewController("c")
	require.NoError(t, err)

	err = c.Remove(NewSwitch("ghost", "a:1", NewSwitchOptions()))
	assert.Error(t, err)
}

func TestControllerFromContextPanicsOutsideRun(t *testing.T) {
	assert.Panics(t, func() {
		ControllerFromContext(context.Background())
	})
}
