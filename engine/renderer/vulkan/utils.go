package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

var vulkanResultNames = map[vk.Result]string{
	vk.Success:                          "VK_SUCCESS",
	vk.NotReady:                         "VK_NOT_READY",
	vk.Timeout:                          "VK_TIMEOUT",
	vk.EventSet:                         "VK_EVENT_SET",
	vk.EventReset:                       "VK_EVENT_RESET",
	vk.Incomplete:                       "VK_INCOMPLETE",
	vk.Suboptimal:                       "VK_SUBOPTIMAL_KHR",
	vk.ThreadIdle:                       "VK_THREAD_IDLE_KHR",
	vk.ThreadDone:                       "VK_THREAD_DONE_KHR",
	vk.OperationDeferred:                "VK_OPERATION_DEFERRED_KHR",
	vk.OperationNotDeferred:             "VK_OPERATION_NOT_DEFERRED_KHR",
	vk.PipelineCompileRequired:          "VK_PIPELINE_COMPILE_REQUIRED_EXT",
	vk.ErrorOutOfHostMemory:             "VK_ERROR_OUT_OF_HOST_MEMORY",
	vk.ErrorOutOfDeviceMemory:           "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	vk.ErrorInitializationFailed:        "VK_ERROR_INITIALIZATION_FAILED",
	vk.ErrorDeviceLost:                  "VK_ERROR_DEVICE_LOST",
	vk.ErrorMemoryMapFailed:             "VK_ERROR_MEMORY_MAP_FAILED",
	vk.ErrorLayerNotPresent:             "VK_ERROR_LAYER_NOT_PRESENT",
	vk.ErrorExtensionNotPresent:         "VK_ERROR_EXTENSION_NOT_PRESENT",
	vk.ErrorFeatureNotPresent:           "VK_ERROR_FEATURE_NOT_PRESENT",
	vk.ErrorIncompatibleDriver:          "VK_ERROR_INCOMPATIBLE_DRIVER",
	vk.ErrorTooManyObjects:              "VK_ERROR_TOO_MANY_OBJECTS",
	vk.ErrorFormatNotSupported:          "VK_ERROR_FORMAT_NOT_SUPPORTED",
	vk.ErrorFragmentedPool:              "VK_ERROR_FRAGMENTED_POOL",
	vk.ErrorSurfaceLost:                 "VK_ERROR_SURFACE_LOST_KHR",
	vk.ErrorNativeWindowInUse:           "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
	vk.ErrorOutOfDate:                   "VK_ERROR_OUT_OF_DATE_KHR",
	vk.ErrorIncompatibleDisplay:         "VK_ERROR_INCOMPATIBLE_DISPLAY_KHR",
	vk.ErrorInvalidShaderNv:             "VK_ERROR_INVALID_SHADER_NV",
	vk.ErrorOutOfPoolMemory:             "VK_ERROR_OUT_OF_POOL_MEMORY",
	vk.ErrorInvalidExternalHandle:       "VK_ERROR_INVALID_EXTERNAL_HANDLE",
	vk.ErrorFragmentation:               "VK_ERROR_FRAGMENTATION",
	vk.ErrorInvalidDeviceAddress:        "VK_ERROR_INVALID_DEVICE_ADDRESS_EXT",
	vk.ErrorFullScreenExclusiveModeLost: "VK_ERROR_FULL_SCREEN_EXCLUSIVE_MODE_LOST_EXT",
	vk.ErrorUnknown:                     "VK_ERROR_UNKNOWN",
}

// VulkanResultString resolves a VkResult to its spec name. The extended
// flag is accepted for call-site symmetry but both forms return the name;
// the numeric value is appended for codes the table does not know.
func VulkanResultString(result vk.Result, getExtended bool) string {
	if name, ok := vulkanResultNames[result]; ok {
		return name
	}
	return fmt.Sprintf("VK_RESULT(%d)", int32(result))
}

// VulkanResultIsSuccess reports whether a VkResult is one of the
// non-error codes.
func VulkanResultIsSuccess(result vk.Result) bool {
	return result >= 0
}

var end = "\x00"
var endChar byte = '\x00'

// VulkanSafeString guarantees null termination before a string crosses
// into the C API.
func VulkanSafeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func VulkanSafeStrings(list []string) []string {
	for i := range list {
		list[i] = VulkanSafeString(list[i])
	}
	return list
}

// FindFirstZeroInByteArray locates the null terminator in a fixed-size
// C string buffer. Returns 0 when no terminator exists.
func FindFirstZeroInByteArray(arr []byte) int {
	for i, b := range arr {
		if b == 0 {
			return i
		}
	}
	return 0
}
